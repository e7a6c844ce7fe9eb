package domain

// Supplier описывает поставщика
type Supplier struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   string
}

// DisplayName — имя, под которым поставщик показан в закупках.
func (s *Supplier) DisplayName() string {
	return s.FirstName
}
