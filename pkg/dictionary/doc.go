// Package dictionary holds the synonym tables that drive field
// classification and the exclusion policy. A Dictionary is immutable once
// built: accessors hand out copies, and Extend/Apply return a new value, so
// one dictionary can be shared by any number of classifiers.
//
// Dictionaries are assembled from JSON or YAML documents. Files found in an
// fs.FS are applied in lexical path order; later files append patterns and
// may replace the classification order:
//
//	priority: [firstName, lastName, email, phone]
//	order: [middleName, company, fullName]
//	fields:
//	  phone: [phone, tel, телефон]
//	exclude:
//	  tokens: [search, captcha]
//	  ancestors: [header, nav]
//
// Default returns the embedded English/Russian tables.
package dictionary
