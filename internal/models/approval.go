package models

// ApprovedStatus is the review status that makes a plan approved.
const ApprovedStatus = "Approved"

// PlanView is the part of a plan the query layer reads.
type PlanView struct {
	Name     string
	Approved bool
}

func (r *Review) IsApproved() bool { return r != nil && r.ApprovalStatus == ApprovedStatus }

func (p *TreatmentPlan) IsApproved() bool { return p.Review.IsApproved() }

func (p *StrippedDownPlan) IsApproved() bool { return p.Review.IsApproved() }

// HasApproved reports whether any plan of the case is approved.
func (c *Case) HasApproved() bool {
	for _, tp := range c.TreatmentPlans {
		if tp.IsApproved() {
			return true
		}
	}
	return false
}

func (c *Case) DeleteUnapprovedPlans() {
	c.TreatmentPlans = keep(c.TreatmentPlans, (*TreatmentPlan).IsApproved)
}

func (c *StrippedDownCase) HasApproved() bool {
	for _, tp := range c.TreatmentPlans {
		if tp.IsApproved() {
			return true
		}
	}
	return false
}

func (c *StrippedDownCase) DeleteUnapprovedPlans() {
	c.TreatmentPlans = keep(c.TreatmentPlans, (*StrippedDownPlan).IsApproved)
}

func (p *Patient) HasApproved() bool {
	for _, c := range p.Cases {
		if c.HasApproved() {
			return true
		}
	}
	return false
}

// PruneUnapproved deletes unapproved plans, then the cases left without
// plans. It reports whether any case survived.
func (p *Patient) PruneUnapproved() bool {
	for _, c := range p.Cases {
		c.DeleteUnapprovedPlans()
	}
	p.Cases = keep(p.Cases, func(c *Case) bool { return len(c.TreatmentPlans) > 0 })
	return len(p.Cases) > 0
}

func (p *Patient) Plans() []PlanView {
	var plans []PlanView
	for _, c := range p.Cases {
		for _, tp := range c.TreatmentPlans {
			plans = append(plans, PlanView{Name: tp.PlanName, Approved: tp.IsApproved()})
		}
	}
	return plans
}

func (p *Patient) RegionNames() []string {
	var names []string
	for _, c := range p.Cases {
		for _, roi := range c.BaseROIs {
			names = append(names, roi.Name)
		}
	}
	return names
}

func (h *PatientHeader) HasApproved() bool {
	for _, c := range h.Cases {
		if c.HasApproved() {
			return true
		}
	}
	return false
}

func (h *PatientHeader) PruneUnapproved() bool {
	for _, c := range h.Cases {
		c.DeleteUnapprovedPlans()
	}
	h.Cases = keep(h.Cases, func(c *StrippedDownCase) bool { return len(c.TreatmentPlans) > 0 })
	return len(h.Cases) > 0
}

func (h *PatientHeader) Plans() []PlanView {
	var plans []PlanView
	for _, c := range h.Cases {
		for _, tp := range c.TreatmentPlans {
			plans = append(plans, PlanView{Name: tp.PlanName, Approved: tp.IsApproved()})
		}
	}
	return plans
}

func (h *PatientHeader) RegionNames() []string {
	var names []string
	for _, c := range h.Cases {
		for _, roi := range c.ROIs {
			names = append(names, roi.Name)
		}
	}
	return names
}

// keep filters items in place.
func keep[T any](items []T, pred func(T) bool) []T {
	out := items[:0]
	for _, item := range items {
		if pred(item) {
			out = append(out, item)
		}
	}
	clear(items[len(out):])
	return out
}
