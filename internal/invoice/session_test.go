package invoice

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicer/pkg/models"
)

func TestSessionSnapshotIsIsolated(t *testing.T) {
	s := NewSession(NewInvoice(fixedToday), testEnv())
	s.Dispatch(AddItem{})

	snap := s.Snapshot()
	snap.Items[0].Description = "edited outside"
	snap.Items = append(snap.Items, snap.Items[0])

	current := s.Snapshot()
	require.Len(t, current.Items, 1)
	assert.Equal(t, "", current.Items[0].Description)
}

func TestSessionDispatchAndReset(t *testing.T) {
	s := NewSession(NewInvoice(fixedToday), testEnv())

	inv := s.Dispatch(AddItem{}, SetField{Field: FieldClientName, Value: "ACME"})
	assert.Len(t, inv.Items, 1)
	assert.Equal(t, "ACME", s.Snapshot().ClientName)

	inv = s.Reset()
	assert.Empty(t, inv.Items)
	assert.Equal(t, "", inv.ClientName)
	assert.Equal(t, fixedToday, inv.IssueDate)
}

func TestSessionReplace(t *testing.T) {
	s := NewSession(NewInvoice(fixedToday), testEnv())
	loaded := ApplyAll(NewInvoice(fixedToday), testEnv(), SetField{Field: FieldInvoiceNumber, Value: "077"})

	s.Replace(loaded)
	loaded.InvoiceNumber = "changed"

	assert.Equal(t, "077", s.Snapshot().InvoiceNumber)
}

func TestSessionConcurrentDispatch(t *testing.T) {
	s := NewSession(NewInvoice(fixedToday), Env{IDs: snowflakeIDs(t, 2), Today: func() models.Date { return fixedToday }})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Dispatch(AddItem{})
			_ = ComputeTotals(s.Snapshot())
		}()
	}
	wg.Wait()

	assert.Len(t, s.Snapshot().Items, 20)
}
