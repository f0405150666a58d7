package console

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ensemble/internal/review/models"
	id "ensemble/pkg/domain"
	dErrors "ensemble/pkg/domain-errors"
)

func reg(name string, status models.RegistrationStatus, payment models.PaymentStatus, createdAt time.Time) models.Registration {
	r := models.NewRegistration(id.NewEventID(), models.Applicant{
		ID:       id.NewApplicantID(),
		FullName: name,
	}, createdAt)
	r.RegistrationStatus = status
	r.PaymentStatus = payment
	return *r
}

func fixtureList() []models.Registration {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return []models.Registration{
		reg("Asha Iyer", models.StatusPending, models.PaymentPaid, base),
		reg("Rohan Mehta", models.StatusConfirmed, models.PaymentNotPaid, base.Add(1*time.Minute)),
		reg("Meera Pillai", models.StatusPending, models.PaymentPending, base.Add(2*time.Minute)),
		reg("Arjun Nair", models.StatusCancelled, models.PaymentFailed, base.Add(3*time.Minute)),
		reg("Asha Menon", models.StatusPending, models.PaymentPaid, base.Add(4*time.Minute)),
	}
}

func TestDeriveComposesInFixedOrder(t *testing.T) {
	raw := fixtureList()
	q := DefaultQuery()
	q.Search = "asha"
	q.Status = string(models.StatusPending)
	q.SortKey = SortByName
	q.Direction = Ascending

	view := Derive(raw, q)
	require.Equal(t, 2, view.Total)
	assert.Equal(t, "Asha Iyer", view.Items[0].DisplayName())
	assert.Equal(t, "Asha Menon", view.Items[1].DisplayName())
}

func TestDeriveIsIdempotent(t *testing.T) {
	raw := fixtureList()
	q := DefaultQuery()
	q.SortKey = SortByPaymentStatus

	first := Derive(raw, q)
	second := Derive(raw, q)
	require.Equal(t, first.Total, second.Total)
	for i := range first.Items {
		assert.Equal(t, first.Items[i].ID, second.Items[i].ID)
	}
}

func TestStableSortPreservesTieOrder(t *testing.T) {
	// All five records differ in creation time, so sorting by a key with
	// ties (payment status) must keep equal keys in raw-list order, both
	// ascending and descending.
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	raw := []models.Registration{
		reg("First Paid", models.StatusPending, models.PaymentPaid, base),
		reg("Second Paid", models.StatusPending, models.PaymentPaid, base.Add(time.Minute)),
		reg("Third Paid", models.StatusPending, models.PaymentPaid, base.Add(2*time.Minute)),
	}

	q := DefaultQuery()
	q.SortKey = SortByPaymentStatus
	q.Direction = Ascending
	view := Derive(raw, q)
	assert.Equal(t, "First Paid", view.Items[0].DisplayName())
	assert.Equal(t, "Third Paid", view.Items[2].DisplayName())

	q.Direction = Descending
	view = Derive(raw, q)
	assert.Equal(t, "First Paid", view.Items[0].DisplayName())
	assert.Equal(t, "Third Paid", view.Items[2].DisplayName())
}

func TestDerivePagination(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	var raw []models.Registration
	for i := 0; i < 12; i++ {
		raw = append(raw, reg("Member", models.StatusPending, models.PaymentNotPaid,
			base.Add(time.Duration(i)*time.Minute)))
	}

	q := DefaultQuery()
	q.SortKey = SortByCreatedAt
	q.Direction = Ascending

	view := Derive(raw, q)
	assert.Equal(t, 12, view.Total)
	assert.Len(t, view.Items, 10)

	q.Page = 1
	view = Derive(raw, q)
	assert.Len(t, view.Items, 2)

	// A page past the end is empty, never an error.
	q.Page = 5
	view = Derive(raw, q)
	assert.Empty(t, view.Items)
	assert.Equal(t, 12, view.Total)
}

func TestSearchMatchesNameOrPaymentReference(t *testing.T) {
	raw := fixtureList()
	raw[1].PaymentReference = "TXN-7741"

	q := DefaultQuery()
	q.Search = "7741"
	view := Derive(raw, q)
	require.Equal(t, 1, view.Total)
	assert.Equal(t, "Rohan Mehta", view.Items[0].DisplayName())
}

func TestNormalizeRejectsUnknownEnums(t *testing.T) {
	q := DefaultQuery()
	q.Status = "archived"
	_, err := q.Normalize()
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	q = DefaultQuery()
	q.SortKey = "shoe_size"
	_, err = q.Normalize()
	require.Error(t, err)

	q = DefaultQuery()
	q.Direction = "sideways"
	_, err = q.Normalize()
	require.Error(t, err)
}

func TestConsoleFilterChangeResetsPage(t *testing.T) {
	raw := fixtureList()
	c := New(id.NewEventID(), raw)

	q := c.Query()
	q.Page = 3
	applied, err := c.SetQuery(q)
	require.NoError(t, err)
	assert.Equal(t, 3, applied.Page)

	// Sorting alone keeps the page.
	q = applied
	q.SortKey = SortByName
	applied, err = c.SetQuery(q)
	require.NoError(t, err)
	assert.Equal(t, 3, applied.Page)

	// A search change resets it.
	q = applied
	q.Search = "asha"
	applied, err = c.SetQuery(q)
	require.NoError(t, err)
	assert.Equal(t, 0, applied.Page)

	// So does a page size change.
	q = applied
	q.Page = 2
	applied, err = c.SetQuery(q)
	require.NoError(t, err)
	q = applied
	q.PerPage = 25
	applied, err = c.SetQuery(q)
	require.NoError(t, err)
	assert.Equal(t, 0, applied.Page)
}

func TestConsoleReplaceKeepsQueryState(t *testing.T) {
	raw := fixtureList()
	c := New(id.NewEventID(), raw)

	q := c.Query()
	q.Status = string(models.StatusPending)
	_, err := c.SetQuery(q)
	require.NoError(t, err)

	confirmed := fixtureList()
	for i := range confirmed {
		confirmed[i].RegistrationStatus = models.StatusConfirmed
	}
	c.Replace(confirmed)

	view := c.View()
	assert.Equal(t, 0, view.Total, "pending filter still applies to the new list")
	assert.Equal(t, string(models.StatusPending), c.Query().Status)
}

func TestConsoleFilteredIgnoresPaging(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	var raw []models.Registration
	for i := 0; i < 25; i++ {
		raw = append(raw, reg("Member", models.StatusPending, models.PaymentNotPaid,
			base.Add(time.Duration(i)*time.Minute)))
	}
	c := New(id.NewEventID(), raw)

	assert.Len(t, c.Filtered(), 25)
	assert.Len(t, c.View().Items, 10)
}
