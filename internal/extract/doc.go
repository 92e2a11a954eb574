// Package extract pulls a Russian taxpayer identification number (ИНН) and a
// person's full name (ФИО) out of free text.
//
//   - validate.go: ValidateTaxID and ValidateFullName, the normalizers every
//     candidate passes through.
//   - rules.go: RuleBased, the deterministic first pass.
//   - parser.go: ParseResponse, the tiered recovery of fields from a model
//     answer (structured block, labelled value, direct re-scan).
//   - schema.go: JSON schema gate for structured blocks.
//   - orchestrator.go: Orchestrator, which runs the rules, asks the model only
//     for missing fields and merges the answers.
//
// Extraction never returns an error; failures show up in Result.Error.
package extract
