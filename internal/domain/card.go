package domain

import (
	"fmt"
	"math"
	"time"
)

// DefaultDailyForgetting is the fraction of recall strength lost per elapsed day.
const DefaultDailyForgetting = 0.1

// Day is the unit elapsed review time is truncated to.
const Day = 24 * time.Hour

// SideType tells how a card side is presented.
type SideType string

const (
	Text  SideType = "text"
	Audio SideType = "audio"
)

// Side is one face of a card. Value is literal text for Text sides and a
// media reference for Audio sides.
type Side struct {
	Type  SideType
	Value string
}

// Result records a single review event for a card.
type Result struct {
	Passed bool
	Date   time.Time
}

// Card represents a bidirectional prompt/answer pair and its review history.
// Results are kept in the order they were recorded.
type Card struct {
	Front           Side
	Back            Side
	Slug            string
	Results         []Result
	DailyForgetting float64
}

// NewCard returns a card with no history and the default forgetting rate.
func NewCard(slug string, front, back Side) Card {
	return Card{
		Front:           front,
		Back:            back,
		Slug:            slug,
		DailyForgetting: DefaultDailyForgetting,
	}
}

// Record appends a review outcome dated at.
func (c *Card) Record(passed bool, at time.Time) {
	c.Results = append(c.Results, Result{Passed: passed, Date: at})
}

// Successes counts the passed reviews.
func (c Card) Successes() int {
	return c.count(true)
}

// Failures counts the failed reviews.
func (c Card) Failures() int {
	return c.count(false)
}

func (c Card) count(passed bool) int {
	n := 0
	for _, r := range c.Results {
		if r.Passed == passed {
			n++
		}
	}
	return n
}

// WeightedSuccesses sums passed reviews, each decayed by the number of whole
// days between its date and now.
func (c Card) WeightedSuccesses(now time.Time) float64 {
	return c.weighted(true, now)
}

// WeightedFailures sums failed reviews, each decayed by the number of whole
// days between its date and now.
func (c Card) WeightedFailures(now time.Time) float64 {
	return c.weighted(false, now)
}

func (c Card) weighted(passed bool, now time.Time) float64 {
	retained := 1 - c.DailyForgetting
	var sum float64
	for _, r := range c.Results {
		if r.Passed != passed {
			continue
		}
		sum += math.Pow(retained, float64(ElapsedDays(r.Date, now)))
	}
	return sum
}

// ElapsedDays returns floor((now - then) / Day). A date after now yields a
// negative count.
func ElapsedDays(then, now time.Time) int64 {
	d := now.Sub(then)
	days := int64(d / Day)
	if d%Day < 0 {
		days--
	}
	return days
}

// Label builds the "prompt → answer" name shown on the results page.
// An audio side is described by the value of the opposite side.
func (c Card) Label() string {
	front := fmt.Sprintf("%s (text)", c.Front.Value)
	if c.Front.Type == Audio {
		front = fmt.Sprintf("%s (audio)", c.Back.Value)
	}
	back := fmt.Sprintf("%s (text)", c.Back.Value)
	if c.Back.Type == Audio {
		back = fmt.Sprintf("%s (audio)", c.Front.Value)
	}
	return front + " → " + back
}

// Collection is an ordered set of cards keyed by slug.
type Collection []Card

// Slugs returns the slugs in collection order.
func (cs Collection) Slugs() []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Slug
	}
	return out
}

// Find returns the index of the card with the given slug, or -1.
func (cs Collection) Find(slug string) int {
	for i, c := range cs {
		if c.Slug == slug {
			return i
		}
	}
	return -1
}
