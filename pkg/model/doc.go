// Package model defines the value types shared by the classifier, the fill
// planner and the discovery/executor adapters. A Control is an immutable
// snapshot of one form control; a Plan is the ordered list of actions the
// planner decided for a page, together with the aggregate counters surfaced
// to callers through Summary. Every type carries JSON tags so plans can be
// serialised by the CLI and report packages without extra mapping.
package model
