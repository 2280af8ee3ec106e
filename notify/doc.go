/*
Package notify contains the notification event model and the matcher evaluation engine.

An Event carries metadata fields, a Severity and a timestamp. A Rule combines field,
severity and calendar predicates using either the All or Any Mode, optionally inverts
the result, and names the targets that should receive the event when it fires.
The Engine evaluates an ordered list of rules and produces the deduplicated list of
target names in first-seen order.
*/
package notify
