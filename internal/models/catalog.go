package models

import "time"

type Category struct {
	ID            string
	NameEn        string
	NameFr        string
	DescriptionEn string
	DescriptionFr string
}

type Company struct {
	ID          string
	OwnerID     string
	Name        string
	Description string
	Email       string
	CreatedAt   time.Time
}
