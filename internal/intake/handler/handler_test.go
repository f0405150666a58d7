package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	eventstore "ensemble/internal/event/store"
	"ensemble/internal/intake/schema"
	"ensemble/internal/intake/service"
	"ensemble/internal/intake/store"
	registrationstore "ensemble/internal/review/store/registration"
	id "ensemble/pkg/domain"
	"ensemble/pkg/testutil"
)

type fixture struct {
	router  chi.Router
	eventID id.EventID
	regs    *registrationstore.InMemory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	events := eventstore.NewInMemory()
	seeded := eventstore.SeedDevEvents(events)
	drafts := store.NewInMemory(schema.Application(), time.Hour)
	regs := registrationstore.NewInMemory()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(drafts, events, regs, schema.Application(), service.WithLogger(logger))

	router := chi.NewRouter()
	New(svc, logger).Register(router)

	return &fixture{router: router, eventID: seeded[0].ID, regs: regs}
}

func (f *fixture) startDraft(t *testing.T) *service.DraftView {
	t.Helper()
	req := testutil.NewJSONRequest(t, http.MethodPost, "/events/"+f.eventID.String()+"/drafts", nil)
	rr := testutil.DoRequest(f.router, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("start draft: got status %d, want %d: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}
	return testutil.UnmarshalResponse[service.DraftView](t, rr)
}

func (f *fixture) setFields(t *testing.T, draftID id.DraftID, fields map[string]string) *service.DraftView {
	t.Helper()
	req := testutil.NewJSONRequest(t, http.MethodPut, "/drafts/"+draftID.String()+"/fields",
		map[string]any{"fields": fields})
	rr := testutil.DoRequest(f.router, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("set fields: got status %d: %s", rr.Code, rr.Body.String())
	}
	return testutil.UnmarshalResponse[service.DraftView](t, rr)
}

func (f *fixture) post(t *testing.T, draftID id.DraftID, action string) (*service.DraftView, int) {
	t.Helper()
	req := testutil.NewJSONRequest(t, http.MethodPost, "/drafts/"+draftID.String()+"/"+action, nil)
	rr := testutil.DoRequest(f.router, req)
	if rr.Code != http.StatusOK {
		return nil, rr.Code
	}
	return testutil.UnmarshalResponse[service.DraftView](t, rr), rr.Code
}

// completeDraft walks a fresh draft through all three steps to the final step.
func (f *fixture) completeDraft(t *testing.T, regNum string) id.DraftID {
	t.Helper()
	view := f.startDraft(t)
	f.setFields(t, view.DraftID, map[string]string{
		schema.FieldFullName:    "Asha Iyer",
		schema.FieldEmail:       "asha@example.edu",
		schema.FieldPhone:       "9876543210",
		schema.FieldYearOfStudy: "first",
	})
	if next, _ := f.post(t, view.DraftID, "next"); next.Step != 2 {
		t.Fatalf("step 1 did not advance: on step %d", next.Step)
	}
	f.setFields(t, view.DraftID, map[string]string{
		schema.FieldRegNum:     regNum,
		schema.FieldDepartment: "Physics",
	})
	if next, _ := f.post(t, view.DraftID, "next"); next.Step != 3 {
		t.Fatalf("step 2 did not advance: on step %d", next.Step)
	}
	f.setFields(t, view.DraftID, map[string]string{
		schema.FieldInstrumentAvail: "no",
		schema.FieldPreferredRole:   "vocalist",
	})
	return view.DraftID
}

func (f *fixture) submit(t *testing.T, draftID id.DraftID) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.NewJSONRequest(t, http.MethodPost, "/drafts/"+draftID.String()+"/submit", nil)
	return testutil.DoRequest(f.router, req)
}

func field(view *service.DraftView, name string) service.FieldView {
	for _, f := range view.Fields {
		if f.Name == name {
			return f
		}
	}
	return service.FieldView{}
}

func TestStartDraftUnknownEvent(t *testing.T) {
	f := newFixture(t)
	req := testutil.NewJSONRequest(t, http.MethodPost, "/events/"+id.NewEventID().String()+"/drafts", nil)
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
}

func TestStartDraftBadEventID(t *testing.T) {
	f := newFixture(t)
	req := testutil.NewJSONRequest(t, http.MethodPost, "/events/not-a-uuid/drafts", nil)
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
}

func TestDraftLifecycle(t *testing.T) {
	f := newFixture(t)
	view := f.startDraft(t)
	if view.Step != 1 || view.TotalSteps != 3 {
		t.Fatalf("fresh draft on step %d of %d, want 1 of 3", view.Step, view.TotalSteps)
	}

	// Step 1 with an invalid phone: next must stay on step 1 with errors.
	f.setFields(t, view.DraftID, map[string]string{
		schema.FieldFullName:    "Asha Iyer",
		schema.FieldEmail:       "asha@example.edu",
		schema.FieldPhone:       "12345",
		schema.FieldYearOfStudy: "first",
	})
	next, code := f.post(t, view.DraftID, "next")
	if code != http.StatusOK {
		t.Fatalf("next: got status %d", code)
	}
	if next.Step != 1 {
		t.Fatalf("invalid step advanced to %d", next.Step)
	}
	if len(field(next, schema.FieldPhone).Errors) == 0 {
		t.Fatal("expected phone errors after blocked next")
	}

	// Fix the phone and walk to the final step.
	f.setFields(t, view.DraftID, map[string]string{schema.FieldPhone: "9876543210"})
	if next, _ = f.post(t, view.DraftID, "next"); next.Step != 2 {
		t.Fatalf("after valid step 1, on step %d", next.Step)
	}
	f.setFields(t, view.DraftID, map[string]string{
		schema.FieldRegNum:     "MU2024001",
		schema.FieldDepartment: "Physics",
	})
	if next, _ = f.post(t, view.DraftID, "next"); next.Step != 3 {
		t.Fatalf("after valid step 2, on step %d", next.Step)
	}
	f.setFields(t, view.DraftID, map[string]string{
		schema.FieldInstrumentAvail: "no",
		schema.FieldPreferredRole:   "vocalist",
	})

	// Submit and verify the registration landed.
	req := testutil.NewJSONRequest(t, http.MethodPost, "/drafts/"+view.DraftID.String()+"/submit", nil)
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatus(t, rr, http.StatusCreated)
	receipt := testutil.UnmarshalResponse[service.Receipt](t, rr)

	reg, err := f.regs.FindByID(context.Background(), receipt.RegistrationID)
	if err != nil {
		t.Fatalf("registration not persisted: %v", err)
	}
	if reg.DisplayName() != "Asha Iyer" {
		t.Fatalf("persisted name %q", reg.DisplayName())
	}

	// The draft is gone after acceptance.
	rr = testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/drafts/"+view.DraftID.String()))
	testutil.AssertStatus(t, rr, http.StatusNotFound)
}

func TestSubmitBeforeFinalStepConflicts(t *testing.T) {
	f := newFixture(t)
	view := f.startDraft(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/drafts/"+view.DraftID.String()+"/submit", nil)
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatusAndError(t, rr, http.StatusConflict, "invariant_violation")
}

func TestSubmitRevalidatesEarlierSteps(t *testing.T) {
	f := newFixture(t)
	draftID := f.completeDraft(t, "MU2024001")
	// Rewrite a step 1 answer while sitting on the final step.
	f.setFields(t, draftID, map[string]string{schema.FieldEmail: "not-an-email"})

	rr := f.submit(t, draftID)
	testutil.AssertStatusAndError(t, rr, http.StatusUnprocessableEntity, "validation_failed")

	// Nothing persisted; the draft survives with the error on the field.
	regs, err := f.regs.ListByEvent(context.Background(), f.eventID)
	if err != nil || len(regs) != 0 {
		t.Fatalf("registrations after rejected submit: %d (err %v)", len(regs), err)
	}
	rr = testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/drafts/"+draftID.String()))
	testutil.AssertStatus(t, rr, http.StatusOK)
	view := testutil.UnmarshalResponse[service.DraftView](t, rr)
	if len(field(view, schema.FieldEmail).Errors) == 0 {
		t.Fatal("expected email errors on the surviving draft")
	}
}

func TestSubmitDuplicateRegistrationNumber(t *testing.T) {
	f := newFixture(t)
	first := f.completeDraft(t, "MU2024001")
	testutil.AssertStatus(t, f.submit(t, first), http.StatusCreated)

	second := f.completeDraft(t, "MU2024001")
	rr := f.submit(t, second)
	testutil.AssertStatusAndError(t, rr, http.StatusUnprocessableEntity, "validation_failed")

	// The store rejection lands on the reg_num field of the surviving draft.
	rr = testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/drafts/"+second.String()))
	testutil.AssertStatus(t, rr, http.StatusOK)
	view := testutil.UnmarshalResponse[service.DraftView](t, rr)
	if len(field(view, schema.FieldRegNum).Errors) == 0 {
		t.Fatal("expected reg_num errors on the surviving draft")
	}
}

func TestSetFieldsRejectsMalformedBody(t *testing.T) {
	f := newFixture(t)
	view := f.startDraft(t)

	req := httptest.NewRequest(http.MethodPut, "/drafts/"+view.DraftID.String()+"/fields",
		strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
}

func TestHiddenFieldClearedThroughAPI(t *testing.T) {
	f := newFixture(t)
	view := f.startDraft(t)

	f.setFields(t, view.DraftID, map[string]string{schema.FieldInstrumentAvail: "yes"})
	updated := f.setFields(t, view.DraftID, map[string]string{schema.FieldInstrumentDetails: "Guitar"})
	if got := field(updated, schema.FieldInstrumentDetails).Value; got != "Guitar" {
		t.Fatalf("details = %q, want Guitar", got)
	}

	updated = f.setFields(t, view.DraftID, map[string]string{schema.FieldInstrumentAvail: "no"})
	details := field(updated, schema.FieldInstrumentDetails)
	if details.Visible || details.Value != "" {
		t.Fatalf("hidden field kept state: visible=%v value=%q", details.Visible, details.Value)
	}
}

func TestAbandonDraft(t *testing.T) {
	f := newFixture(t)
	view := f.startDraft(t)

	req := testutil.NewRequest(t, http.MethodDelete, "/drafts/"+view.DraftID.String())
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatus(t, rr, http.StatusNoContent)

	rr = testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/drafts/"+view.DraftID.String()))
	testutil.AssertStatus(t, rr, http.StatusNotFound)
}
