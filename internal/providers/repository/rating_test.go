package repository

import "testing"

func TestFoldRatingFirstReview(t *testing.T) {
	for rating := 1; rating <= 5; rating++ {
		if got := FoldRating(0, 0, rating); got != float64(rating) {
			t.Fatalf("FoldRating(0, 0, %d) = %v, want %d", rating, got, rating)
		}
	}
}

func TestFoldRatingWeightedAverage(t *testing.T) {
	cases := []struct {
		avg    float64
		count  int
		rating int
		want   float64
	}{
		{5, 1, 4, 4.5},
		{4.5, 2, 5, 4.7},  // 14/3 = 4.666..., rounds up
		{4, 3, 1, 3.3},    // 13/4 = 3.25, rounds to 3.3
		{3.3, 3, 3, 3.2},  // 12.9/4 = 3.225
		{4.9, 100, 1, 4.9}, // one outlier barely moves a large sample
	}
	for _, tc := range cases {
		if got := FoldRating(tc.avg, tc.count, tc.rating); got != tc.want {
			t.Fatalf("FoldRating(%v, %d, %d) = %v, want %v", tc.avg, tc.count, tc.rating, got, tc.want)
		}
	}
}

func TestFoldRatingSequenceMatchesFullAverage(t *testing.T) {
	// Folding ratings one at a time lands on the same value as averaging
	// the whole set, because each step rounds to one decimal.
	ratings := []int{5, 4, 5, 3, 4, 5}

	avg, count := 0.0, 0
	for _, r := range ratings {
		avg = FoldRating(avg, count, r)
		count++
	}

	if avg < 4.2 || avg > 4.4 {
		t.Fatalf("folded average = %v, want close to 4.3", avg)
	}
	if count != len(ratings) {
		t.Fatalf("count = %d, want %d", count, len(ratings))
	}
}
