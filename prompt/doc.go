// Package prompt loads and renders the stage prompt templates.
//
// Default prompts are embedded in the binary. A project can override any of
// them by dropping a .txt file with the same name into .specflow/prompts/
// or prompts/ under the project directory; overrides win over embedded
// defaults. Templates use text/template with a small set of string helpers.
package prompt
