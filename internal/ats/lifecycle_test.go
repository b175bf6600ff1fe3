package ats_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"ats-go/internal/ats"
	"ats-go/internal/testutil"
)

func TestService_ChangeStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("appends entry and bumps version", func(t *testing.T) {
		f := testutil.NewTestService(t)
		c := mustCreateCandidate(t, f, "111.222.333-44")
		f.Clock.Advance(24 * time.Hour)

		got, err := f.Service.ChangeStatus(ctx, c.ID, ats.StatusTechnicalTest, "  Passed the screening call.  ")
		if err != nil {
			t.Fatalf("ChangeStatus() error = %v", err)
		}
		if got.CurrentStatus() != ats.StatusTechnicalTest {
			t.Errorf("CurrentStatus() = %s, want TechnicalTest", got.CurrentStatus())
		}
		if len(got.StatusHistory) != 2 {
			t.Fatalf("history length = %d, want 2", len(got.StatusHistory))
		}
		latest, _ := got.StatusHistory.Latest()
		if latest.Notes != "Passed the screening call." {
			t.Errorf("notes = %q, want trimmed text", latest.Notes)
		}
		if latest.Actor != "tester" || got.LastUpdatedBy != "tester" {
			t.Errorf("actor = %q, LastUpdatedBy = %q, want tester", latest.Actor, got.LastUpdatedBy)
		}
		if !got.LastUpdate.Equal(f.Clock.Now()) {
			t.Errorf("LastUpdate = %v, want %v", got.LastUpdate, f.Clock.Now())
		}
		if got.Version != c.Version+1 {
			t.Errorf("Version = %d, want %d", got.Version, c.Version+1)
		}

		stored, err := f.Service.GetCandidate(ctx, c.ID)
		if err != nil {
			t.Fatalf("GetCandidate() error = %v", err)
		}
		if stored.Version != got.Version || stored.CurrentStatus() != ats.StatusTechnicalTest {
			t.Errorf("stored = v%d %s, want v%d TechnicalTest", stored.Version, stored.CurrentStatus(), got.Version)
		}
	})

	t.Run("short notes are rejected before any store access", func(t *testing.T) {
		f := testutil.NewTestService(t)
		c := mustCreateCandidate(t, f, "111.222.333-44")
		reads, commits := f.DB.Reads(), f.DB.Commits()

		_, err := f.Service.ChangeStatus(ctx, c.ID, ats.StatusOffer, "too short")
		if !errors.Is(err, ats.ErrValidation) {
			t.Fatalf("ChangeStatus() error = %v, want ErrValidation", err)
		}
		if f.DB.Reads() != reads || f.DB.Commits() != commits {
			t.Errorf("store was accessed: reads %d->%d, commits %d->%d", reads, f.DB.Reads(), commits, f.DB.Commits())
		}
	})

	t.Run("notes length counts surrounding spaces", func(t *testing.T) {
		f := testutil.NewTestService(t)
		c := mustCreateCandidate(t, f, "111.222.333-44")

		got, err := f.Service.ChangeStatus(ctx, c.ID, ats.StatusOffer, "         x")
		if err != nil {
			t.Fatalf("ChangeStatus() error = %v", err)
		}
		latest, _ := got.StatusHistory.Latest()
		if latest.Status != ats.StatusOffer || latest.Notes != "x" {
			t.Errorf("latest = %s %q, want Offer \"x\"", latest.Status, latest.Notes)
		}

		if _, err := f.Service.ChangeStatus(ctx, c.ID, ats.StatusHired, "        x"); !errors.Is(err, ats.ErrValidation) {
			t.Errorf("ChangeStatus() with 9 characters error = %v, want ErrValidation", err)
		}
	})

	t.Run("rejects unknown status and Interview", func(t *testing.T) {
		f := testutil.NewTestService(t)
		c := mustCreateCandidate(t, f, "111.222.333-44")

		for _, s := range []ats.Status{"Limbo", ats.StatusInterview, ""} {
			if _, err := f.Service.ChangeStatus(ctx, c.ID, s, "A long enough note."); !errors.Is(err, ats.ErrValidation) {
				t.Errorf("ChangeStatus(%q) error = %v, want ErrValidation", s, err)
			}
		}
	})

	t.Run("missing candidate", func(t *testing.T) {
		f := testutil.NewTestService(t)
		_, err := f.Service.ChangeStatus(ctx, "nobody", ats.StatusOffer, "A long enough note.")
		if !errors.Is(err, ats.ErrNotFound) {
			t.Errorf("ChangeStatus() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("leaving Interview deletes the active interview", func(t *testing.T) {
		f := testutil.NewTestService(t)
		c := mustCreateCandidate(t, f, "111.222.333-44")
		iv := mustSchedule(t, f, c.ID, mustAddInterviewer(t, f, "Carla Dias").ID)

		if _, err := f.Service.ChangeStatus(ctx, c.ID, ats.StatusTechnicalTest, "Interview went well."); err != nil {
			t.Fatalf("ChangeStatus() error = %v", err)
		}
		if _, err := f.Service.Interviews().Get(ctx, iv.ID); !errors.Is(err, ats.ErrNotFound) {
			t.Errorf("Get(%s) error = %v, want ErrNotFound", iv.ID, err)
		}

		// Both writes went out in one commit.
		batches := f.DB.Batches()
		ops := batches[len(batches)-1].Ops()
		if len(ops) != 2 {
			t.Fatalf("last batch has %d ops, want 2", len(ops))
		}
		del, ok := ops[0].(ats.DeleteInterview)
		if !ok || del.ID != iv.ID {
			t.Errorf("ops[0] = %#v, want DeleteInterview{%s}", ops[0], iv.ID)
		}
		if _, ok := ops[1].(ats.UpdateHistory); !ok {
			t.Errorf("ops[1] = %T, want UpdateHistory", ops[1])
		}
	})

	t.Run("anonymous actor is labeled System", func(t *testing.T) {
		db := testutil.NewTestDatabase(t)
		svc := ats.NewService(db, testutil.NewTestObjectStore(), nil, nil, ats.ContextIdentity{},
			ats.NewNopLogger(), testutil.FixedClock(), testutil.NewStubIDGenerator())

		c, err := svc.CreateCandidate(ctx, candidateInput("111.222.333-44"), nil)
		if err != nil {
			t.Fatalf("CreateCandidate() error = %v", err)
		}
		if c.CreatedBy != "" || c.StatusHistory[0].Actor != ats.SystemActor {
			t.Errorf("CreatedBy = %q, Actor = %q", c.CreatedBy, c.StatusHistory[0].Actor)
		}

		got, err := svc.ChangeStatus(ats.WithActor(ctx, "recruiter@example.com"), c.ID, ats.StatusOffer, "Strong technical profile.")
		if err != nil {
			t.Fatalf("ChangeStatus() error = %v", err)
		}
		latest, _ := got.StatusHistory.Latest()
		if latest.Actor != "recruiter@example.com" || got.LastUpdatedBy != "recruiter@example.com" {
			t.Errorf("Actor = %q, LastUpdatedBy = %q", latest.Actor, got.LastUpdatedBy)
		}
	})
}

func TestService_TransitionPolicy(t *testing.T) {
	ctx := context.Background()
	policy := ats.TransitionPolicy{
		ats.StatusScreening: {ats.StatusRejected},
	}
	f := testutil.NewTestService(t, ats.WithTransitionPolicy(policy))
	c := mustCreateCandidate(t, f, "111.222.333-44")
	interviewer := mustAddInterviewer(t, f, "Carla Dias")

	if _, err := f.Service.ChangeStatus(ctx, c.ID, ats.StatusOffer, "Skipping every step."); !errors.Is(err, ats.ErrValidation) {
		t.Errorf("ChangeStatus(Offer) error = %v, want ErrValidation", err)
	}
	_, _, err := f.Service.ScheduleInterview(ctx, c.ID, ats.InterviewRequest{
		InterviewerID: interviewer.ID,
		Type:          ats.InterviewInPerson,
		Date:          f.Clock.Now().Add(time.Hour),
	})
	if !errors.Is(err, ats.ErrValidation) {
		t.Errorf("ScheduleInterview() error = %v, want ErrValidation", err)
	}
	if _, err := f.Service.ChangeStatus(ctx, c.ID, ats.StatusRejected, "Not a fit for the role."); err != nil {
		t.Errorf("ChangeStatus(Rejected) error = %v", err)
	}

	stored, _ := f.Service.GetCandidate(ctx, c.ID)
	if len(stored.StatusHistory) != 2 {
		t.Errorf("history length = %d, want 2", len(stored.StatusHistory))
	}
}

func TestService_ScheduleInterview(t *testing.T) {
	ctx := context.Background()

	t.Run("creates interview and linked entry together", func(t *testing.T) {
		f := testutil.NewTestService(t)
		c := mustCreateCandidate(t, f, "111.222.333-44")
		interviewer := mustAddInterviewer(t, f, "Carla Dias")
		commits := f.DB.Commits()
		when := time.Date(2024, 1, 17, 14, 0, 0, 0, time.UTC)

		got, iv, err := f.Service.ScheduleInterview(ctx, c.ID, ats.InterviewRequest{
			InterviewerID: interviewer.ID,
			Type:          ats.InterviewOnline,
			Date:          when,
			Notes:         "Meet link in the invite.",
		})
		if err != nil {
			t.Fatalf("ScheduleInterview() error = %v", err)
		}
		if f.DB.Commits() != commits+1 {
			t.Errorf("commits = %d, want one batch", f.DB.Commits()-commits)
		}

		ivs, err := f.Service.Interviews().ForCandidate(ctx, c.ID)
		if err != nil {
			t.Fatalf("ForCandidate() error = %v", err)
		}
		if len(ivs) != 1 || ivs[0].ID != iv.ID {
			t.Fatalf("ForCandidate() = %v, want only %s", ivs, iv.ID)
		}
		if iv.CandidateName != c.Name || iv.InterviewerName != "Carla Dias" {
			t.Errorf("interview names = %q/%q", iv.CandidateName, iv.InterviewerName)
		}

		if len(got.StatusHistory) != 2 {
			t.Fatalf("history length = %d, want 2", len(got.StatusHistory))
		}
		latest, _ := got.StatusHistory.Latest()
		if latest.Status != ats.StatusInterview || latest.InterviewID != iv.ID {
			t.Errorf("latest = %s/%s, want Interview/%s", latest.Status, latest.InterviewID, iv.ID)
		}
		want := "Interview (Online) scheduled with Carla Dias for 17/01/2024 14:00. Meet link in the invite."
		if latest.Notes != want {
			t.Errorf("notes = %q, want %q", latest.Notes, want)
		}
	})

	t.Run("rescheduling replaces the active interview", func(t *testing.T) {
		f := testutil.NewTestService(t)
		c := mustCreateCandidate(t, f, "111.222.333-44")
		interviewer := mustAddInterviewer(t, f, "Carla Dias")
		first := mustSchedule(t, f, c.ID, interviewer.ID)
		f.Clock.Advance(time.Hour)
		second := mustSchedule(t, f, c.ID, interviewer.ID)

		ivs, _ := f.Service.Interviews().ForCandidate(ctx, c.ID)
		if len(ivs) != 1 || ivs[0].ID != second.ID {
			t.Errorf("ForCandidate() = %d interviews, want only %s (first was %s)", len(ivs), second.ID, first.ID)
		}
	})

	t.Run("note uses display location", func(t *testing.T) {
		loc := time.FixedZone("BRT", -3*60*60)
		f := testutil.NewTestService(t, ats.WithLocation(loc))
		c := mustCreateCandidate(t, f, "111.222.333-44")
		interviewer := mustAddInterviewer(t, f, "Carla Dias")

		got, _, err := f.Service.ScheduleInterview(ctx, c.ID, ats.InterviewRequest{
			InterviewerID: interviewer.ID,
			Type:          ats.InterviewInPerson,
			Date:          time.Date(2024, 1, 17, 14, 0, 0, 0, time.UTC),
		})
		if err != nil {
			t.Fatalf("ScheduleInterview() error = %v", err)
		}
		latest, _ := got.StatusHistory.Latest()
		if latest.Notes != "Interview (InPerson) scheduled with Carla Dias for 17/01/2024 11:00." {
			t.Errorf("notes = %q", latest.Notes)
		}
	})

	t.Run("invalid requests", func(t *testing.T) {
		f := testutil.NewTestService(t)
		c := mustCreateCandidate(t, f, "111.222.333-44")
		interviewer := mustAddInterviewer(t, f, "Carla Dias")
		when := f.Clock.Now().Add(time.Hour)

		tests := []struct {
			name string
			req  ats.InterviewRequest
			want error
		}{
			{name: "no interviewer", req: ats.InterviewRequest{Type: ats.InterviewOnline, Date: when}, want: ats.ErrValidation},
			{name: "bad type", req: ats.InterviewRequest{InterviewerID: interviewer.ID, Type: "Phone", Date: when}, want: ats.ErrValidation},
			{name: "no date", req: ats.InterviewRequest{InterviewerID: interviewer.ID, Type: ats.InterviewOnline}, want: ats.ErrValidation},
			{name: "unknown interviewer", req: ats.InterviewRequest{InterviewerID: "ghost", Type: ats.InterviewOnline, Date: when}, want: ats.ErrNotFound},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, _, err := f.Service.ScheduleInterview(ctx, c.ID, tt.req)
				if !errors.Is(err, tt.want) {
					t.Errorf("ScheduleInterview() error = %v, want %v", err, tt.want)
				}
			})
		}

		ivs, _ := f.Service.Interviews().ForCandidate(ctx, c.ID)
		if len(ivs) != 0 {
			t.Errorf("ForCandidate() = %d interviews after failed requests, want 0", len(ivs))
		}
	})

	t.Run("dates that cannot be stored are rejected", func(t *testing.T) {
		f := testutil.NewTestService(t)
		c := mustCreateCandidate(t, f, "111.222.333-44")
		interviewer := mustAddInterviewer(t, f, "Carla Dias")
		commits := f.DB.Commits()

		for _, when := range []time.Time{
			time.Date(2300, 1, 17, 14, 0, 0, 0, time.UTC),
			time.Date(1600, 1, 17, 14, 0, 0, 0, time.UTC),
			ats.LatestInterviewDate.Add(time.Nanosecond),
			ats.EarliestInterviewDate.Add(-time.Nanosecond),
		} {
			_, _, err := f.Service.ScheduleInterview(ctx, c.ID, ats.InterviewRequest{
				InterviewerID: interviewer.ID,
				Type:          ats.InterviewOnline,
				Date:          when,
			})
			if !errors.Is(err, ats.ErrValidation) {
				t.Errorf("ScheduleInterview(%v) error = %v, want ErrValidation", when, err)
			}
		}
		if f.DB.Commits() != commits {
			t.Errorf("commits = %d, want none", f.DB.Commits()-commits)
		}
		if all, _ := f.Service.Interviews().All(ctx); len(all) != 0 {
			t.Errorf("All() = %d interviews, want 0", len(all))
		}
	})

	t.Run("stored date matches the requested date", func(t *testing.T) {
		tests := []struct {
			name       string
			date       time.Time
			cancelNote string
		}{
			{"unix epoch", time.Unix(0, 0).UTC(), "Interview of 01/01/1970 00:00 cancelled."},
			{"before epoch", time.Date(1969, 12, 31, 23, 0, 0, 0, time.UTC), "Interview of 31/12/1969 23:00 cancelled."},
			{"earliest", ats.EarliestInterviewDate, "Interview of " + ats.EarliestInterviewDate.Format("02/01/2006 15:04") + " cancelled."},
			{"latest", ats.LatestInterviewDate, "Interview of " + ats.LatestInterviewDate.Format("02/01/2006 15:04") + " cancelled."},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := testutil.NewTestService(t)
				c := mustCreateCandidate(t, f, "111.222.333-44")
				interviewer := mustAddInterviewer(t, f, "Carla Dias")

				_, iv, err := f.Service.ScheduleInterview(ctx, c.ID, ats.InterviewRequest{
					InterviewerID: interviewer.ID,
					Type:          ats.InterviewOnline,
					Date:          tt.date,
				})
				if err != nil {
					t.Fatalf("ScheduleInterview() error = %v", err)
				}

				stored, err := f.Service.Interviews().Get(ctx, iv.ID)
				if err != nil {
					t.Fatalf("Get() error = %v", err)
				}
				if !stored.Date.Equal(tt.date) {
					t.Errorf("stored date = %v, want %v", stored.Date, tt.date)
				}
				events, err := f.Service.Calendar(ctx)
				if err != nil {
					t.Fatalf("Calendar() error = %v", err)
				}
				if len(events) != 1 || !events[0].Start.Equal(tt.date) {
					t.Errorf("Calendar() = %+v, want one event at %v", events, tt.date)
				}

				got, err := f.Service.CancelInterview(ctx, iv.ID)
				if err != nil {
					t.Fatalf("CancelInterview() error = %v", err)
				}
				latest, _ := got.StatusHistory.Latest()
				if latest.Notes != tt.cancelNote {
					t.Errorf("cancel note = %q, want %q", latest.Notes, tt.cancelNote)
				}
			})
		}
	})

	t.Run("missing candidate leaves no interview", func(t *testing.T) {
		f := testutil.NewTestService(t)
		interviewer := mustAddInterviewer(t, f, "Carla Dias")

		_, _, err := f.Service.ScheduleInterview(ctx, "nobody", ats.InterviewRequest{
			InterviewerID: interviewer.ID,
			Type:          ats.InterviewOnline,
			Date:          f.Clock.Now(),
		})
		if !errors.Is(err, ats.ErrNotFound) {
			t.Fatalf("ScheduleInterview() error = %v, want ErrNotFound", err)
		}
		all, _ := f.Service.Interviews().All(ctx)
		if len(all) != 0 {
			t.Errorf("All() = %d interviews, want 0", len(all))
		}
	})
}

func TestService_CancelInterview(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes interview and returns to Screening", func(t *testing.T) {
		f := testutil.NewTestService(t)
		c := mustCreateCandidate(t, f, "111.222.333-44")
		iv := mustSchedule(t, f, c.ID, mustAddInterviewer(t, f, "Carla Dias").ID)
		f.Clock.Advance(time.Minute)

		got, err := f.Service.CancelInterview(ctx, iv.ID)
		if err != nil {
			t.Fatalf("CancelInterview() error = %v", err)
		}
		if _, err := f.Service.Interviews().Get(ctx, iv.ID); !errors.Is(err, ats.ErrNotFound) {
			t.Errorf("Get() error = %v, want ErrNotFound", err)
		}
		if len(got.StatusHistory) != 3 {
			t.Fatalf("history length = %d, want 3", len(got.StatusHistory))
		}
		latest, _ := got.StatusHistory.Latest()
		if latest.Status != ats.StatusScreening {
			t.Errorf("latest status = %s, want Screening", latest.Status)
		}
		if latest.Notes != "Interview of 17/01/2024 10:30 cancelled." {
			t.Errorf("notes = %q", latest.Notes)
		}
	})

	t.Run("ignores the transition policy", func(t *testing.T) {
		policy := ats.TransitionPolicy{ats.StatusInterview: {ats.StatusOffer}}
		f := testutil.NewTestService(t, ats.WithTransitionPolicy(policy))
		c := mustCreateCandidate(t, f, "111.222.333-44")
		iv := mustSchedule(t, f, c.ID, mustAddInterviewer(t, f, "Carla Dias").ID)

		if _, err := f.Service.CancelInterview(ctx, iv.ID); err != nil {
			t.Errorf("CancelInterview() error = %v", err)
		}
	})

	t.Run("unknown interview", func(t *testing.T) {
		f := testutil.NewTestService(t)
		if _, err := f.Service.CancelInterview(ctx, "missing"); !errors.Is(err, ats.ErrNotFound) {
			t.Errorf("CancelInterview() error = %v, want ErrNotFound", err)
		}
	})
}

func TestService_DeleteCandidate(t *testing.T) {
	ctx := context.Background()

	t.Run("removes interviews and documents", func(t *testing.T) {
		f := testutil.NewTestService(t)
		c := mustCreateCandidate(t, f, "111.222.333-44",
			pendingDoc("resume.pdf"), pendingDoc("license.png"), pendingDoc("work-card.pdf"))
		other := mustCreateCandidate(t, f, "999.888.777-66", pendingDoc("other.pdf"))
		interviewer := mustAddInterviewer(t, f, "Carla Dias")
		mustSchedule(t, f, c.ID, interviewer.ID)
		extra := &ats.Interview{CandidateID: c.ID, CandidateName: c.Name, InterviewerID: interviewer.ID, Type: ats.InterviewInPerson, Date: f.Clock.Now().Add(72 * time.Hour)}
		if err := f.Service.Interviews().Create(ctx, extra); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		mustSchedule(t, f, other.ID, interviewer.ID)

		if n := f.Store.Len(); n != 4 {
			t.Fatalf("store holds %d objects before delete, want 4", n)
		}

		if err := f.Service.DeleteCandidate(ctx, c.ID); err != nil {
			t.Fatalf("DeleteCandidate() error = %v", err)
		}

		if _, err := f.Service.GetCandidate(ctx, c.ID); !errors.Is(err, ats.ErrNotFound) {
			t.Errorf("GetCandidate() error = %v, want ErrNotFound", err)
		}
		ivs, _ := f.Service.Interviews().ForCandidate(ctx, c.ID)
		if len(ivs) != 0 {
			t.Errorf("ForCandidate() = %d interviews, want 0", len(ivs))
		}
		if n := f.Store.Len(); n != 1 {
			t.Errorf("store holds %d objects, want only the other candidate's", n)
		}
		if ivs, _ := f.Service.Interviews().ForCandidate(ctx, other.ID); len(ivs) != 1 {
			t.Errorf("other candidate has %d interviews, want 1", len(ivs))
		}
	})

	t.Run("already missing documents are skipped", func(t *testing.T) {
		f := testutil.NewTestService(t)
		c := mustCreateCandidate(t, f, "111.222.333-44", pendingDoc("resume.pdf"))
		if err := f.Store.Delete(ctx, c.Documents[0].Locator); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}

		if err := f.Service.DeleteCandidate(ctx, c.ID); err != nil {
			t.Fatalf("DeleteCandidate() error = %v", err)
		}
	})

	t.Run("object store failure keeps the record", func(t *testing.T) {
		db := testutil.NewTestDatabase(t)
		store := testutil.NewFailingObjectStore(testutil.NewTestObjectStore())
		svc := ats.NewService(db, store, nil, nil, nil, ats.NewNopLogger(), testutil.FixedClock(), testutil.NewStubIDGenerator())
		c, err := svc.CreateCandidate(ctx, candidateInput("111.222.333-44"), []ats.Document{pendingDoc("resume.pdf")})
		if err != nil {
			t.Fatalf("CreateCandidate() error = %v", err)
		}
		store.DeleteErr = errors.New("bucket unavailable")

		if err := svc.DeleteCandidate(ctx, c.ID); !errors.Is(err, ats.ErrObjectStore) {
			t.Fatalf("DeleteCandidate() error = %v, want ErrObjectStore", err)
		}
		if _, err := svc.GetCandidate(ctx, c.ID); err != nil {
			t.Errorf("GetCandidate() error = %v, candidate should remain", err)
		}
	})

	t.Run("missing candidate", func(t *testing.T) {
		f := testutil.NewTestService(t)
		if err := f.Service.DeleteCandidate(ctx, "nobody"); !errors.Is(err, ats.ErrNotFound) {
			t.Errorf("DeleteCandidate() error = %v, want ErrNotFound", err)
		}
	})
}

func TestService_ConcurrentModification(t *testing.T) {
	ctx := context.Background()

	// concurrentNote writes straight to the underlying store, the way a
	// second session would.
	concurrentNote := func(t *testing.T, f *testutil.ServiceFixture, id string) {
		t.Helper()
		inner := f.DB.Database
		c, err := inner.FindCandidateByID(ctx, id)
		if err != nil || c == nil {
			t.Fatalf("FindCandidateByID() = %v, %v", c, err)
		}
		c.AppendStatus(ats.StatusEntry{Status: ats.StatusOffer, Date: f.Clock.Now(), Notes: "Written elsewhere."})
		if err := inner.Commit(ctx, ats.NewBatch().UpdateHistory(c)); err != nil {
			t.Fatalf("concurrent Commit() error = %v", err)
		}
	}

	t.Run("retries from a fresh read", func(t *testing.T) {
		f := testutil.NewTestService(t)
		c := mustCreateCandidate(t, f, "111.222.333-44")
		reads, commits := f.DB.Reads(), f.DB.Commits()

		f.DB.BeforeCommit = func(_ context.Context, n int) {
			if n == commits+1 {
				concurrentNote(t, f, c.ID)
			}
		}

		got, err := f.Service.ChangeStatus(ctx, c.ID, ats.StatusRejected, "Declined the offer.")
		if err != nil {
			t.Fatalf("ChangeStatus() error = %v", err)
		}
		if f.DB.Reads()-reads != 2 || f.DB.Commits()-commits != 2 {
			t.Errorf("reads = %d, commits = %d, want 2 each", f.DB.Reads()-reads, f.DB.Commits()-commits)
		}
		if len(got.StatusHistory) != 3 {
			t.Fatalf("history length = %d, want 3 (both writes kept)", len(got.StatusHistory))
		}
		if got.CurrentStatus() != ats.StatusRejected {
			t.Errorf("CurrentStatus() = %s, want Rejected", got.CurrentStatus())
		}
		if got.Version != 3 {
			t.Errorf("Version = %d, want 3", got.Version)
		}
	})

	t.Run("gives up after the retry budget", func(t *testing.T) {
		f := testutil.NewTestService(t, ats.WithMaxConflictRetries(2))
		c := mustCreateCandidate(t, f, "111.222.333-44")
		commits := f.DB.Commits()

		f.DB.BeforeCommit = func(_ context.Context, _ int) {
			concurrentNote(t, f, c.ID)
		}

		_, err := f.Service.ChangeStatus(ctx, c.ID, ats.StatusRejected, "Declined the offer.")
		if !errors.Is(err, ats.ErrConflict) || !errors.Is(err, ats.ErrPersistence) {
			t.Fatalf("ChangeStatus() error = %v, want ErrConflict and ErrPersistence", err)
		}
		if got := f.DB.Commits() - commits; got != 3 {
			t.Errorf("commits = %d, want 3", got)
		}
	})

	t.Run("delete racing with delete", func(t *testing.T) {
		f := testutil.NewTestService(t, ats.WithMaxConflictRetries(0))
		c := mustCreateCandidate(t, f, "111.222.333-44")
		commits := f.DB.Commits()

		f.DB.BeforeCommit = func(_ context.Context, n int) {
			if n == commits+1 {
				stale, _ := f.DB.Database.FindCandidateByID(ctx, c.ID)
				if err := f.DB.Database.Commit(ctx, ats.NewBatch().RemoveCandidate(stale)); err != nil {
					t.Fatalf("concurrent delete error = %v", err)
				}
			}
		}

		err := f.Service.DeleteCandidate(ctx, c.ID)
		if !errors.Is(err, ats.ErrNotFound) {
			t.Errorf("DeleteCandidate() error = %v, want ErrNotFound", err)
		}
	})
}

func TestService_CancelInterviewAfterConcurrentCancel(t *testing.T) {
	ctx := context.Background()
	f := testutil.NewTestService(t)
	c := mustCreateCandidate(t, f, "111.222.333-44")
	iv := mustSchedule(t, f, c.ID, mustAddInterviewer(t, f, "Carla Dias").ID)
	commits := f.DB.Commits()

	f.DB.BeforeCommit = func(_ context.Context, n int) {
		if n != commits+1 {
			return
		}
		fresh, _ := f.DB.Database.FindCandidateByID(ctx, c.ID)
		fresh.AppendStatus(ats.StatusEntry{Status: ats.StatusScreening, Date: f.Clock.Now(), Notes: "Cancelled elsewhere."})
		if err := f.DB.Database.Commit(ctx, ats.NewBatch().DeleteInterview(iv.ID).UpdateHistory(fresh)); err != nil {
			t.Fatalf("concurrent cancel error = %v", err)
		}
	}

	_, err := f.Service.CancelInterview(ctx, iv.ID)
	if !errors.Is(err, ats.ErrNotFound) {
		t.Fatalf("CancelInterview() error = %v, want ErrNotFound", err)
	}
	stored, _ := f.Service.GetCandidate(ctx, c.ID)
	cancels := 0
	for _, e := range stored.StatusHistory {
		if strings.Contains(e.Notes, "ancelled") {
			cancels++
		}
	}
	if cancels != 1 {
		t.Errorf("history has %d cancellation entries, want 1", cancels)
	}
}
