// Package service contains the application-specific use cases. It turns a
// completion request into a background job and answers status queries about
// it, coordinating the provider factories from the generation layer with the
// job registry from the task package.
//
// Key components:
//
// 1. CompletionService:
//   - Built once from the LLM configuration; backend and credential problems
//     are reported synchronously by the constructor
//   - Copies the provider configuration into every job it submits
//   - Never fails on submission; every problem after that point is recorded
//     as the job's failure reason
//
// 2. Error Handling:
//   - Construction errors wrap the generation sentinels so callers can use errors.Is
//   - Execution errors are reduced to text by the task that hits them
package service
