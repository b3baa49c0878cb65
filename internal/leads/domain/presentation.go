package domain

import "telecrm/platform/phone"

// Promotion splits a work queue into the lead to call now and the rest.
type Promotion struct {
	Current *Lead
	UpNext  []Lead
}

// Promote treats the first lead in server order as the current call.
// The input slice is not modified.
func Promote(leads []Lead) Promotion {
	if len(leads) == 0 {
		return Promotion{UpNext: []Lead{}}
	}
	current := leads[0]
	upNext := make([]Lead, len(leads)-1)
	copy(upNext, leads[1:])
	return Promotion{Current: &current, UpNext: upNext}
}

// Actions are the affordances a row exposes.
type Actions struct {
	Call     bool
	Close    bool
	EditName bool
}

// Row is one lead as rendered in a bucket.
type Row struct {
	Lead         Lead
	Actions      Actions
	DisplayPhone string
	DialURI      string
	ShowFollowUp bool
}

// View is a rendered bucket. Current is set only for work queues; Rows holds
// the up-next list for work queues and every lead otherwise.
type View struct {
	Bucket  Bucket
	Current *Row
	Rows    []Row
}

// Empty reports whether the bucket has no leads at all.
func (v View) Empty() bool {
	return v.Current == nil && len(v.Rows) == 0
}

// BuildView applies the presentation rules for bucket:
// work queues promote the first lead and expose call/close only on it,
// follow-up exposes call/close on every lead, converted is read only.
func BuildView(bucket Bucket, leads []Lead, region string) View {
	view := View{Bucket: bucket, Rows: []Row{}}

	switch {
	case bucket.IsWorkQueue():
		promo := Promote(leads)
		if promo.Current != nil {
			row := newRow(*promo.Current, region, Actions{Call: true, Close: true, EditName: true})
			view.Current = &row
		}
		for _, lead := range promo.UpNext {
			view.Rows = append(view.Rows, newRow(lead, region, Actions{EditName: true}))
		}
	case bucket == BucketFollowUp:
		for _, lead := range leads {
			row := newRow(lead, region, Actions{Call: true, Close: true, EditName: true})
			row.ShowFollowUp = lead.FollowUpDate != nil
			view.Rows = append(view.Rows, row)
		}
	default:
		for _, lead := range leads {
			view.Rows = append(view.Rows, newRow(lead, region, Actions{}))
		}
	}

	return view
}

// Leads returns the leads of the view in display order.
func (v View) Leads() []Lead {
	out := make([]Lead, 0, len(v.Rows)+1)
	if v.Current != nil {
		out = append(out, v.Current.Lead)
	}
	for _, row := range v.Rows {
		out = append(out, row.Lead)
	}
	return out
}

func newRow(lead Lead, region string, actions Actions) Row {
	row := Row{
		Lead:         lead,
		Actions:      actions,
		DisplayPhone: phone.Display(lead.Phone, region),
	}
	if actions.Call {
		row.DialURI = phone.DialURI(lead.Phone, region)
	}
	return row
}
