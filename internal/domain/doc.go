// Package domain defines the core business entities of the SRS engine:
// cards, review grades, review sessions, and their validation rules.
package domain
