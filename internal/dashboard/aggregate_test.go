package dashboard

import (
	"testing"
	"time"

	"finanzas/internal/core"
)

func svc(name string, due int, status core.ServiceStatus) core.Service {
	return core.Service{Name: name, DueDate: due, Status: status}
}

func names(services []core.Service) []string {
	out := make([]string, len(services))
	for i, s := range services {
		out[i] = s.Name
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestTotalBalance(t *testing.T) {
	accounts := []core.Account{
		{Balance: core.FromUnits(1000), Currency: core.ARS},
		{Balance: core.Money{Cents: -2550}, Currency: core.ARS},
		{Balance: core.FromUnits(20), Currency: core.USD},
	}
	if got := TotalBalance(accounts).Cents; got != 100000-2550+2000 {
		t.Fatalf("TotalBalance = %d", got)
	}
	by := TotalsByCurrency(accounts)
	if by[core.ARS].Cents != 97450 || by[core.USD].Cents != 2000 {
		t.Fatalf("TotalsByCurrency = %v", by)
	}
	if TotalBalance(nil).Cents != 0 {
		t.Fatalf("empty total must be zero")
	}
}

func TestUpcomingDeadlines(t *testing.T) {
	services := []core.Service{
		svc("a", 14, core.StatusPending),
		svc("b", 10, core.StatusReserved),
		svc("paid", 5, core.StatusPaid),
		svc("c", 12, core.StatusPending),
	}
	got := UpcomingDeadlines(services, 10)
	if !equal(names(got), []string{"b", "c", "a"}) {
		t.Fatalf("UpcomingDeadlines = %v", names(got))
	}
	for _, s := range got {
		if s.IsPaid() {
			t.Fatalf("paid service leaked into upcoming")
		}
	}
	if got := UpcomingDeadlines(services, 2); !equal(names(got), []string{"b", "c"}) {
		t.Fatalf("truncated = %v", names(got))
	}
	if services[0].Name != "a" {
		t.Fatalf("input was reordered")
	}
}

func TestUpcomingDeadlinesStableTies(t *testing.T) {
	services := []core.Service{
		svc("first", 10, core.StatusPending),
		svc("early", 1, core.StatusPending),
		svc("second", 10, core.StatusPending),
	}
	got := UpcomingDeadlines(services, 3)
	if !equal(names(got), []string{"early", "first", "second"}) {
		t.Fatalf("ties not stable: %v", names(got))
	}
}

func TestListingOrder(t *testing.T) {
	services := []core.Service{
		svc("paid-early", 1, core.StatusPaid),
		svc("late", 25, core.StatusPending),
		svc("mid", 10, core.StatusReserved),
		svc("paid-mid", 10, core.StatusPaid),
		svc("mid-2", 10, core.StatusPending),
	}
	got := ListingOrder(services)
	want := []string{"mid", "mid-2", "late", "paid-early", "paid-mid"}
	if !equal(names(got), want) {
		t.Fatalf("ListingOrder = %v, want %v", names(got), want)
	}
}

func TestListingOrderKeepsPaidInInputOrder(t *testing.T) {
	got := ListingOrder([]core.Service{
		svc("paid-late", 20, core.StatusPaid),
		svc("pending", 10, core.StatusPending),
		svc("paid-early", 5, core.StatusPaid),
	})
	want := []string{"pending", "paid-late", "paid-early"}
	if !equal(names(got), want) {
		t.Fatalf("ListingOrder = %v, want %v", names(got), want)
	}
}

func TestPaidProgress(t *testing.T) {
	p := PaidProgress([]core.Service{
		svc("a", 1, core.StatusPaid),
		svc("b", 2, core.StatusPending),
		svc("c", 3, core.StatusPaid),
		svc("d", 4, core.StatusReserved),
	})
	if p.Paid != 2 || p.Total != 4 || p.Percentage != 50 {
		t.Fatalf("PaidProgress = %+v", p)
	}
	if empty := PaidProgress(nil); empty.Percentage != 0 {
		t.Fatalf("empty progress = %+v", empty)
	}
}

func TestDeadlinesUrgency(t *testing.T) {
	now := time.Date(2025, time.February, 26, 15, 0, 0, 0, time.UTC)
	got := Deadlines([]core.Service{
		svc("soon", 28, core.StatusPending),
		svc("clamped", 31, core.StatusPending),
		svc("past", 3, core.StatusPending),
		svc("later", 27, core.StatusPending),
	}, now)
	if !got[0].Urgent || got[0].DueOn.Day() != 28 {
		t.Fatalf("soon: %+v", got[0])
	}
	if got[1].DueOn.Day() != 28 || !got[1].Urgent {
		t.Fatalf("clamped: %+v", got[1])
	}
	if got[2].Urgent {
		t.Fatalf("past deadline must not be urgent")
	}
	if !got[3].Urgent {
		t.Fatalf("later: %+v", got[3])
	}
}
