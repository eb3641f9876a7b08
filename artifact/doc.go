// Package artifact persists stage snapshots and renders spec exports.
//
// Every successful generation can be snapshotted as JSON under the
// project's artifact directory, giving an audit trail of batches. Once the
// workflow completes, Export renders the whole spec as a markdown document
// or a JSON bundle.
package artifact
