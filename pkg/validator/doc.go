// Package validator provides small composable validation rules for request
// input.
//
// Rules are plain values combining a check closure with the error reported on
// failure; Apply runs a set of rules and collects every failure into a
// ValidationErrors value that implements error:
//
//	if err := validator.Apply(
//	    validator.Required("email", email),
//	    validator.ValidEmail("email", email),
//	); err != nil {
//	    // err is validator.ValidationErrors
//	}
package validator
