// Package timeline serves the signed-in home feed. Until real posting ships
// the feed is a fixed set of sample posts, so the page has content to render
// immediately after onboarding.
package timeline

import "time"

// Post is a single timeline entry.
type Post struct {
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// samplePosts returns the placeholder feed, timestamped relative to now so
// the entries always look recent.
func samplePosts(now time.Time) []Post {
	return []Post{
		{
			Author:    "ripple",
			Body:      "Welcome to Ripple! This is your timeline.",
			CreatedAt: now.Add(-5 * time.Minute),
		},
		{
			Author:    "dev_diary",
			Body:      "Shipping the passwordless login flow today. No passwords to forget, no passwords to leak.",
			CreatedAt: now.Add(-2 * time.Hour),
		},
		{
			Author:    "coffee_or_tea",
			Body:      "Hot take: the best social network is the one that loads fast.",
			CreatedAt: now.Add(-26 * time.Hour),
		},
		{
			Author:    "night_owl",
			Body:      "Posting works soon. Following works soon. Patience works now.",
			CreatedAt: now.Add(-3 * 24 * time.Hour),
		},
	}
}
