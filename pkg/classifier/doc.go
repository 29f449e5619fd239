// Package classifier maps a form control to the semantic field type it most
// likely expects. The haystack (id, name, placeholder, label and classes,
// lowercased) is scanned against a priority-ordered rule registry and the
// first rule with a matching substring wins. firstName, lastName, email and
// phone are registered ahead of every other type so that broad patterns such
// as fullName's "name" never shadow them. When no pattern matches, the
// control's declared kind decides: email inputs map to email, tel inputs to
// phone and date inputs to dateOfBirth.
//
// Classification is substring based with no word boundaries; "age" matches
// inside "language". That imprecision is accepted.
package classifier
