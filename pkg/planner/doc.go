// Package planner turns a page's controls and a DataBag into a fill plan.
// Every control receives exactly one action, in input order: inactive and
// excluded controls are skipped, checkboxes are toggled at random, radios are
// selected, selects pick a random valid option and text-like controls get
// either the caller's value for their classified type or a synthetic value.
//
// Planning performs no I/O and never fails. A panic raised while inspecting
// one control is contained to that control, which is skipped with reason
// inspection-error.
package planner
