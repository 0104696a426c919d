package domain

type Item struct {
	ID          int64
	OwnerID     int64
	Name        string
	Description string
	Available   bool
}
