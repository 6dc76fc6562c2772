// Package billing provides domain models for usage metering and budget
// tracking in a multi-tenant billing platform.
//
// This package implements the usage/budget bounded context, which is
// responsible for:
//   - Normalized invoice and payment records as produced by upstream
//     payment-gateway normalization
//   - Rolling up usage events into per-account statistics (today, current
//     ISO week, current calendar month)
//   - Classifying usage against quota limits into threshold bands
//   - Tracking sub-account allocations (client/branch/product budgets)
//     and deciding when a budget alert is due
//
// Key Value Objects:
//   - NormalizedInvoice / NormalizedPayment: settled billing documents
//   - UsageRecord: a single usage event with cost
//   - UsageStats: per-account rollup snapshot
//   - Allocation: budget/quota scope narrower than the whole account
//
// All computations here are pure: they take fully-materialized record
// collections and return fresh value objects. Record retrieval and alert
// delivery belong to the surrounding layers.
package billing
