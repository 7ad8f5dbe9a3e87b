package model

// Client is one row of the client roster as read from disk. SignupDate stays
// a string at ingestion; the cleaning stage parses it.
type Client struct {
	ClientID       string `csv:"client_id"`
	Name           string `csv:"name"`
	Industry       string `csv:"industry"`
	AccountManager string `csv:"account_manager"`
	SignupDate     string `csv:"signup_date"`
}
