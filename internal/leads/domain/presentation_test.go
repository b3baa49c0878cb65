package domain

import (
	"testing"
	"time"
)

func sampleLeads() []Lead {
	follow := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	return []Lead{
		{ID: "L1", Phone: "9999900000", Status: StatusAssigned},
		{ID: "L2", Phone: "9999900001", Name: "Ravi", Status: StatusAssigned},
		{ID: "L3", Phone: "9999900002", Status: StatusFollowUp, FollowUpDate: &follow},
	}
}

func TestPromote(t *testing.T) {
	leads := sampleLeads()

	got := Promote(leads)
	if got.Current == nil || got.Current.ID != "L1" {
		t.Fatalf("Current = %+v, want L1", got.Current)
	}
	if len(got.UpNext) != 2 || got.UpNext[0].ID != "L2" || got.UpNext[1].ID != "L3" {
		t.Fatalf("UpNext = %+v, want [L2 L3]", got.UpNext)
	}

	got.UpNext[0].Name = "changed"
	if leads[1].Name != "Ravi" {
		t.Fatalf("Promote must not alias the input slice")
	}
}

func TestPromoteEmpty(t *testing.T) {
	got := Promote(nil)
	if got.Current != nil {
		t.Fatalf("Current = %+v, want nil", got.Current)
	}
	if got.UpNext == nil || len(got.UpNext) != 0 {
		t.Fatalf("UpNext = %#v, want empty slice", got.UpNext)
	}
}

func TestBuildViewWorkQueueExposesCallOnlyOnCurrent(t *testing.T) {
	for _, bucket := range []Bucket{BucketAssigned, BucketPending} {
		view := BuildView(bucket, sampleLeads(), "IN")

		if view.Current == nil || view.Current.Lead.ID != "L1" {
			t.Fatalf("%s: Current = %+v, want L1", bucket, view.Current)
		}
		if !view.Current.Actions.Call || !view.Current.Actions.Close {
			t.Errorf("%s: current row must expose call and close", bucket)
		}
		if view.Current.DialURI == "" {
			t.Errorf("%s: current row must carry a dial URI", bucket)
		}
		for _, row := range view.Rows {
			if row.Actions.Call || row.Actions.Close {
				t.Errorf("%s: up-next row %s exposes call/close", bucket, row.Lead.ID)
			}
			if row.DialURI != "" {
				t.Errorf("%s: up-next row %s carries a dial URI", bucket, row.Lead.ID)
			}
		}
		if len(view.Rows) != 2 {
			t.Errorf("%s: len(Rows) = %d, want 2", bucket, len(view.Rows))
		}
	}
}

func TestBuildViewFollowUpExposesCallOnEveryRow(t *testing.T) {
	view := BuildView(BucketFollowUp, sampleLeads(), "IN")

	if view.Current != nil {
		t.Fatalf("follow-up bucket must not promote a current call")
	}
	if len(view.Rows) != 3 {
		t.Fatalf("len(Rows) = %d, want 3", len(view.Rows))
	}
	for _, row := range view.Rows {
		if !row.Actions.Call || !row.Actions.Close {
			t.Errorf("row %s must expose call and close", row.Lead.ID)
		}
	}
	if !view.Rows[2].ShowFollowUp || view.Rows[0].ShowFollowUp {
		t.Errorf("ShowFollowUp must follow the presence of a follow-up date")
	}
}

func TestBuildViewConvertedIsReadOnly(t *testing.T) {
	view := BuildView(BucketConverted, sampleLeads(), "IN")

	if view.Current != nil {
		t.Fatalf("converted bucket must not promote a current call")
	}
	for _, row := range view.Rows {
		if row.Actions != (Actions{}) {
			t.Errorf("row %s actions = %+v, want none", row.Lead.ID, row.Actions)
		}
	}
}

func TestViewLeadsKeepsServerOrder(t *testing.T) {
	view := BuildView(BucketAssigned, sampleLeads(), "IN")
	leads := view.Leads()
	if len(leads) != 3 || leads[0].ID != "L1" || leads[2].ID != "L3" {
		t.Fatalf("Leads() = %+v", leads)
	}
	if !BuildView(BucketAssigned, nil, "IN").Empty() {
		t.Fatalf("view of no leads must be empty")
	}
}
