package rental

import "testing"

func TestSubmitFilterResetsPage(t *testing.T) {
	filter, errs := SubmitFilter(FormValues{
		From:   "2024-01-01",
		To:     "2024-01-31",
		Status: "PENDING",
	}, 5)
	if errs != nil {
		t.Fatalf("expected valid form, got %v", errs)
	}

	if filter.PageIndex != 0 {
		t.Fatalf("expected page index reset to 0, got %d", filter.PageIndex)
	}
	if filter.From != "2024-01-01" || filter.To != "2024-01-31" || filter.Status != StatusPending {
		t.Fatalf("unexpected filter: %+v", filter)
	}
	if filter.PageSize != 5 {
		t.Fatalf("expected page size 5, got %d", filter.PageSize)
	}
}

func TestSubmitFilterEmptyFormIsShowAll(t *testing.T) {
	filter, errs := SubmitFilter(FormValues{}, 20)
	if errs != nil {
		t.Fatalf("expected empty form to be valid, got %v", errs)
	}
	if filter.From != "" || filter.To != "" || filter.Status != "" {
		t.Fatalf("expected no criteria, got %+v", filter)
	}
}

func TestSubmitFilterRejectsBadDates(t *testing.T) {
	cases := []FormValues{
		{From: "01-01-2024"},
		{To: "2024/01/31"},
		{From: "yesterday"},
	}
	for _, values := range cases {
		if _, errs := SubmitFilter(values, 20); errs == nil {
			t.Fatalf("expected %+v to be rejected", values)
		}
	}
}

func TestSubmitFilterRejectsInvertedRange(t *testing.T) {
	_, errs := SubmitFilter(FormValues{From: "2024-02-01", To: "2024-01-01"}, 20)
	if errs == nil {
		t.Fatal("expected inverted range to be rejected")
	}
	if _, ok := errs["to"]; !ok {
		t.Fatalf("expected error on 'to', got %v", errs)
	}
}

func TestSubmitFilterRejectsUnknownStatus(t *testing.T) {
	_, errs := SubmitFilter(FormValues{Status: "BOOKED"}, 20)
	if errs == nil {
		t.Fatal("expected unknown status to be rejected")
	}
	if _, ok := errs["status"]; !ok {
		t.Fatalf("expected error on 'status', got %v", errs)
	}
}

func TestWithPageKeepsCriteria(t *testing.T) {
	filter := FilterSpec{From: "2024-01-01", Status: StatusPaid, PageSize: 10}
	moved := filter.WithPage(3)

	if moved.PageIndex != 3 {
		t.Fatalf("expected page 3, got %d", moved.PageIndex)
	}
	if moved.From != filter.From || moved.Status != filter.Status || moved.PageSize != filter.PageSize {
		t.Fatalf("paging must not touch criteria: %+v", moved)
	}
	if filter.PageIndex != 0 {
		t.Fatal("WithPage must not mutate the receiver")
	}
}
