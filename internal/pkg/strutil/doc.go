// Package strutil provides common string manipulation utilities.
//
// This package contains helper functions for string operations commonly
// needed across the application, particularly when working with pointer
// string fields in domain entities.
//
// Utilities:
//   - SafeString: Dereference string pointer with nil check
//   - SafeStringPtr: Create string pointer from value
package strutil
