// Package todotxt parses and formats todo.txt task lines.
//
// A line is tokenized into fields, checked against a small grammar and
// turned into a Task. Task.String writes the canonical form back out, and
// Sort and Search operate on slices of tasks.
//
//	x (A) 2024-03-02 2024-03-01 call mom +family @phone due:2024-03-05
package todotxt
