package ats

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"
)

// CalendarEventLength is the fixed length of an interview on the calendar.
const CalendarEventLength = time.Hour

// GroupByStatus buckets candidates by current status. Every pipeline status
// has a key, possibly with an empty slice.
func GroupByStatus(candidates []*Candidate) map[Status][]*Candidate {
	groups := make(map[Status][]*Candidate, len(PipelineOrder))
	for _, s := range PipelineOrder {
		groups[s] = []*Candidate{}
	}
	for _, c := range candidates {
		s := c.CurrentStatus()
		groups[s] = append(groups[s], c)
	}
	return groups
}

// BoardColumn is one status column of the board.
type BoardColumn struct {
	Status     Status       `json:"status"`
	Candidates []*Candidate `json:"candidates"`
}

// Board is the candidates grouped into columns in pipeline order.
type Board struct {
	Columns []BoardColumn `json:"columns"`
}

// BuildBoard arranges candidates into one column per status.
func BuildBoard(candidates []*Candidate) Board {
	groups := GroupByStatus(candidates)
	board := Board{Columns: make([]BoardColumn, 0, len(PipelineOrder))}
	for _, s := range PipelineOrder {
		board.Columns = append(board.Columns, BoardColumn{Status: s, Candidates: groups[s]})
	}
	return board
}

// Summary holds the dashboard counters.
type Summary struct {
	Total     int `json:"total"`
	Hired     int `json:"hired"`
	InProcess int `json:"inProcess"`
	Rejected  int `json:"rejected"`
}

// Summarize counts candidates by outcome. Everyone not yet hired or rejected
// is in process.
func Summarize(candidates []*Candidate) Summary {
	sum := Summary{Total: len(candidates)}
	for _, c := range candidates {
		switch c.CurrentStatus() {
		case StatusHired:
			sum.Hired++
		case StatusRejected:
			sum.Rejected++
		default:
			sum.InProcess++
		}
	}
	return sum
}

// StageDuration is the mean number of days spent between two statuses.
type StageDuration struct {
	Label string  `json:"label"`
	Days  float64 `json:"days"`
}

// StageDurations averages the days between consecutive history entries
// across all candidates, labeled "From → To". Pairs whose dates do not
// strictly increase are skipped. Means are rounded to one decimal and sorted
// ascending, equal means by label.
func StageDurations(candidates []*Candidate) []StageDuration {
	type bucket struct {
		total float64
		count int
	}
	buckets := make(map[string]*bucket)

	for _, c := range candidates {
		history := c.StatusHistory.Chronological()
		for i := 1; i < len(history); i++ {
			prev, cur := history[i-1], history[i]
			if !cur.Date.After(prev.Date) {
				continue
			}
			label := fmt.Sprintf("%s → %s", prev.Status, cur.Status)
			b, ok := buckets[label]
			if !ok {
				b = &bucket{}
				buckets[label] = b
			}
			b.total += cur.Date.Sub(prev.Date).Hours() / 24
			b.count++
		}
	}

	out := make([]StageDuration, 0, len(buckets))
	for label, b := range buckets {
		mean := b.total / float64(b.count)
		out = append(out, StageDuration{Label: label, Days: math.Round(mean*10) / 10})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Days != out[j].Days {
			return out[i].Days < out[j].Days
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// CalendarEvent is an interview placed on the calendar.
type CalendarEvent struct {
	InterviewID string        `json:"interviewId"`
	CandidateID string        `json:"candidateId"`
	Title       string        `json:"title"`
	Start       time.Time     `json:"start"`
	End         time.Time     `json:"end"`
	Interviewer string        `json:"interviewer"`
	Type        InterviewType `json:"type"`
	Notes       string        `json:"notes,omitempty"`
}

// CalendarEvents turns interviews into one-hour events titled
// "HH:MM - candidate" in loc. Overlaps are not detected.
func CalendarEvents(interviews []*Interview, loc *time.Location) []CalendarEvent {
	if loc == nil {
		loc = time.UTC
	}
	events := make([]CalendarEvent, 0, len(interviews))
	for _, iv := range interviews {
		events = append(events, CalendarEvent{
			InterviewID: iv.ID,
			CandidateID: iv.CandidateID,
			Title:       fmt.Sprintf("%s - %s", iv.Date.In(loc).Format("15:04"), iv.CandidateName),
			Start:       iv.Date,
			End:         iv.Date.Add(CalendarEventLength),
			Interviewer: iv.InterviewerName,
			Type:        iv.Type,
			Notes:       iv.Notes,
		})
	}
	return events
}

// Dashboard bundles the summary counters with the board.
type Dashboard struct {
	Summary Summary `json:"summary"`
	Board   Board   `json:"board"`
}

// Board reads all candidates and returns the dashboard.
func (s *Service) Board(ctx context.Context) (*Dashboard, error) {
	cs, err := s.ListCandidates(ctx)
	if err != nil {
		return nil, err
	}
	return &Dashboard{Summary: Summarize(cs), Board: BuildBoard(cs)}, nil
}

// Metrics reads all candidates and returns their stage durations.
func (s *Service) Metrics(ctx context.Context) ([]StageDuration, error) {
	cs, err := s.ListCandidates(ctx)
	if err != nil {
		return nil, err
	}
	return StageDurations(cs), nil
}

// Calendar returns every interview as a calendar event, earliest first.
func (s *Service) Calendar(ctx context.Context) ([]CalendarEvent, error) {
	ivs, err := s.interviews.All(ctx)
	if err != nil {
		return nil, err
	}
	return CalendarEvents(ivs, s.location), nil
}
