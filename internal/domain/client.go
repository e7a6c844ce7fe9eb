package domain

// Client описывает клиента зала
type Client struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Phone     string
}
