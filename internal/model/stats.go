package model

// AgeCount is one row of the per-age breakdown: how many active posts
// target a given age. Ages with zero posts are omitted from the result;
// consumers default missing ages to 0.
type AgeCount struct {
	TargetAge int `json:"target_age"`
	PostCount int `json:"post_count"`
}

// SiteStats holds the aggregate counters shown on the stats page.
// TotalLikes sums the denormalized like_count over active posts, so it
// matches what the listing pages display.
type SiteStats struct {
	TotalPosts       int        `json:"total_posts"`
	TotalUsers       int        `json:"total_users"`
	TotalLikes       int        `json:"total_likes"`
	ActiveAges       int        `json:"active_ages"`
	ActiveUserGroups []AgeGroup `json:"active_user_groups"`
}

// AgeGroup is one 7-year bucket of author ages, used for the "most active
// age groups" breakdown. AgeRange is a display label like "21-27"; AgeCount
// is the number of distinct author ages seen inside the bucket.
type AgeGroup struct {
	AgeRange string `json:"age_range"`
	AgeCount int    `json:"age_count"`
}

// UserStats accompanies a user's post history.
type UserStats struct {
	TotalPosts int `json:"total_posts"`
	TotalLikes int `json:"total_likes"`
}
