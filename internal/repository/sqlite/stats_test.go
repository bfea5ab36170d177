package sqlite

import (
	"context"
	"testing"

	"github.com/sakif/age-wisdom/internal/model"
)

func TestAgeCounts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	createTestPost(t, db, 18, "one")
	createTestPost(t, db, 18, "two")
	createTestPost(t, db, 30, "three")
	gone := createTestPost(t, db, 30, "deleted")
	if err := db.Deactivate(ctx, gone.ID); err != nil {
		t.Fatalf("Deactivate() error = %v", err)
	}

	counts, err := db.AgeCounts(ctx)
	if err != nil {
		t.Fatalf("AgeCounts() error = %v", err)
	}

	// Ascending by age, inactive posts excluded, absent ages omitted.
	want := []model.AgeCount{
		{TargetAge: 18, PostCount: 2},
		{TargetAge: 30, PostCount: 1},
	}
	if len(counts) != len(want) {
		t.Fatalf("got %d age rows, want %d", len(counts), len(want))
	}
	for i := range want {
		if counts[i] != want[i] {
			t.Errorf("counts[%d] = %+v, want %+v", i, counts[i], want[i])
		}
	}
}

func TestAgeCounts_Empty(t *testing.T) {
	db := newTestDB(t)

	counts, err := db.AgeCounts(context.Background())
	if err != nil {
		t.Fatalf("AgeCounts() error = %v", err)
	}
	if len(counts) != 0 {
		t.Errorf("got %d rows on an empty store, want 0", len(counts))
	}
}

func TestSiteTotals(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	createTestUser(t, db, "statuser")

	a := createTestPost(t, db, 18, "a")
	setPostLikeCount(t, db, a.ID, 4)
	b := createTestPost(t, db, 25, "b")
	setPostLikeCount(t, db, b.ID, 1)
	gone := createTestPost(t, db, 60, "gone")
	setPostLikeCount(t, db, gone.ID, 99)
	if err := db.Deactivate(ctx, gone.ID); err != nil {
		t.Fatalf("Deactivate() error = %v", err)
	}

	if n, err := db.CountActivePosts(ctx); err != nil || n != 2 {
		t.Errorf("CountActivePosts() = (%d, %v), want (2, nil)", n, err)
	}
	if n, err := db.CountActiveUsers(ctx); err != nil || n != 1 {
		t.Errorf("CountActiveUsers() = (%d, %v), want (1, nil)", n, err)
	}
	// Deactivated posts drop out of the like total too, so the sum always
	// matches what the listing pages can show.
	if n, err := db.SumLikeCounts(ctx); err != nil || n != 5 {
		t.Errorf("SumLikeCounts() = (%d, %v), want (5, nil)", n, err)
	}
	if n, err := db.CountActiveAges(ctx); err != nil || n != 2 {
		t.Errorf("CountActiveAges() = (%d, %v), want (2, nil)", n, err)
	}
}

func TestDistinctAuthorAges(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for _, age := range []int{25, 25, 40, 33} {
		post := &model.Post{TargetAge: 18, Content: "x", AuthorAge: age}
		if err := db.Create(ctx, post); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	ages, err := db.DistinctAuthorAges(ctx)
	if err != nil {
		t.Fatalf("DistinctAuthorAges() error = %v", err)
	}

	want := []int{25, 33, 40}
	if len(ages) != len(want) {
		t.Fatalf("got %v, want %v", ages, want)
	}
	for i := range want {
		if ages[i] != want[i] {
			t.Errorf("ages[%d] = %d, want %d", i, ages[i], want[i])
		}
	}
}
