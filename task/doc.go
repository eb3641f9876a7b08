// Package task maps workflow work to model tiers. Cheap judgment calls
// (problem validation) run on the fast tier, stage generation on the
// default tier, and long-form export summaries on the thinking tier.
package task
