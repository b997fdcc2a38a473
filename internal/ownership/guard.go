package ownership

import "github.com/wonny/coverline/internal/contracts"

// Authorize reports whether user owns the quote or policy, judged through
// its insured person. A false result is a normal outcome, not an error.
func Authorize(user contracts.User, record contracts.Owned) bool {
	if record == nil || user.ID == "" {
		return false
	}
	return record.InsuredOwnerID() == user.ID
}
