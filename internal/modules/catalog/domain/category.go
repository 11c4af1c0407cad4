package domain

import "fmt"

type Department struct {
	ID   int
	Name string
}

type Category struct {
	ID          int
	Name        string
	Description string
	Department  Department
}

func (c Category) Validate() error {
	if c.ID <= 0 {
		return fmt.Errorf("category id must be positive, got %d", c.ID)
	}
	if c.Department.ID <= 0 {
		return fmt.Errorf("category %d has no department", c.ID)
	}
	return nil
}
