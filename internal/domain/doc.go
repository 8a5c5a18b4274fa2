// Package domain defines the core business entities of the task list service
// (todos and the users that own them) together with their validation rules
// and the errors those rules produce.
package domain
