// Package shareplan computes the value, returns and history of an employee
// share plan. It is designed to be local-first and auditable: every headline
// figure has a breakdown of the rows that sum up to it, and every
// data-quality issue is recorded rather than silently dropped.
//
// The core functionalities include:
//   - Reference Points: normalizing allocation and transaction rows into one
//     flat list of dated, categorized points with pre-computed per-currency
//     prices, FIFO-reduced by executed sales.
//   - Currency Views: O(1) switching of the display currency, since all
//     exchange-rate lookups happen once when the portfolio is loaded.
//   - Metrics: invested amounts per contribution category, current value,
//     total sold, returns and annualized (XIRR) returns.
//   - Timeline: reconstructing the plan's value at every known market close,
//     with purchases and sales annotated.
//   - Data Persistence: encoding and decoding the portfolio, prices and
//     rates to and from human-readable, version-controllable JSONL files.
//
// This package serves as the foundational logic for the `esop` command-line
// tool, ensuring that all operations are consistent and based on a single
// source of truth.
package shareplan
