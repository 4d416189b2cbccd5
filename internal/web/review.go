package web

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	fsrs "github.com/open-spaced-repetition/go-fsrs"

	"quizolute/internal/models"
)

var (
	// ErrNoDueCards indicates that there are no cards ready to review.
	ErrNoDueCards = errors.New("no due cards")
	ErrNoSuchCard = errors.New("no such card")
)

const workingQueueSize = 20

// ReviewCard is a generated flashcard with its scheduling state.
type ReviewCard struct {
	Index    int
	Card     models.Flashcard
	Schedule fsrs.Card
}

// DeckStats summarizes a deck at a point in time.
type DeckStats struct {
	Total    int
	Due      int
	New      int
	Learning int
	Review   int
}

// ReviewDeck schedules the flashcards of the current session with FSRS. It
// lives in memory only and is replaced on the next flashcard generation.
//
// Cards rated Again enter a working queue that is drilled before anything
// else, oldest first; other cards come up in due order.
type ReviewDeck struct {
	mu     sync.Mutex
	params fsrs.Parameters
	cards  []ReviewCard
	queue  []int
}

func NewReviewDeck(cards []models.Flashcard, now time.Time) *ReviewDeck {
	d := &ReviewDeck{
		params: fsrs.DefaultParam(),
		cards:  make([]ReviewCard, len(cards)),
	}
	for i, c := range cards {
		d.cards[i] = ReviewCard{
			Index: i,
			Card:  c,
			Schedule: fsrs.Card{
				Due:   now,
				State: fsrs.New,
			},
		}
	}
	return d
}

func (d *ReviewDeck) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.cards)
}

// Next returns the card to review at now.
// Priority order: 1) working queue, 2) due cards by due time.
func (d *ReviewDeck) Next(now time.Time) (ReviewCard, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.queue) > 0 {
		return d.cards[d.queue[0]], nil
	}

	due := d.dueIndexes(now)
	if len(due) == 0 {
		return ReviewCard{}, ErrNoDueCards
	}
	return d.cards[due[0]], nil
}

// Rate applies a review to the card at index.
func (d *ReviewDeck) Rate(index int, rating fsrs.Rating, now time.Time) (ReviewCard, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if index < 0 || index >= len(d.cards) {
		return ReviewCard{}, fmt.Errorf("card %d: %w", index, ErrNoSuchCard)
	}

	scheduling := d.params.Repeat(d.cards[index].Schedule, now)
	info, ok := scheduling[rating]
	if !ok {
		return ReviewCard{}, fmt.Errorf("rating %d not supported", rating)
	}
	d.cards[index].Schedule = info.Card

	if rating == fsrs.Again {
		d.addToWorkingQueue(index)
	} else {
		d.removeFromWorkingQueue(index)
	}
	return d.cards[index], nil
}

func (d *ReviewDeck) Stats(now time.Time) DeckStats {
	d.mu.Lock()
	defer d.mu.Unlock()

	stats := DeckStats{Total: len(d.cards), Due: len(d.dueIndexes(now))}
	for _, c := range d.cards {
		switch c.Schedule.State {
		case fsrs.New:
			stats.New++
		case fsrs.Learning, fsrs.Relearning:
			stats.Learning++
		case fsrs.Review:
			stats.Review++
		}
	}
	return stats
}

// dueIndexes lists cards due at now, earliest first, ties by position.
func (d *ReviewDeck) dueIndexes(now time.Time) []int {
	var due []int
	for i, c := range d.cards {
		if !c.Schedule.Due.After(now) {
			due = append(due, i)
		}
	}
	sort.SliceStable(due, func(a, b int) bool {
		return d.cards[due[a]].Schedule.Due.Before(d.cards[due[b]].Schedule.Due)
	})
	return due
}

func (d *ReviewDeck) addToWorkingQueue(index int) {
	for _, i := range d.queue {
		if i == index {
			return
		}
	}
	d.queue = append(d.queue, index)
	if len(d.queue) > workingQueueSize {
		d.queue = d.queue[1:]
	}
}

func (d *ReviewDeck) removeFromWorkingQueue(index int) {
	for pos, i := range d.queue {
		if i == index {
			d.queue = append(d.queue[:pos:pos], d.queue[pos+1:]...)
			return
		}
	}
}

// ParseRating maps "again", "hard", "good" or "easy" to an FSRS rating.
func ParseRating(raw string) (fsrs.Rating, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "again":
		return fsrs.Again, nil
	case "hard":
		return fsrs.Hard, nil
	case "good":
		return fsrs.Good, nil
	case "easy":
		return fsrs.Easy, nil
	default:
		return 0, fmt.Errorf("unknown rating %q", raw)
	}
}
