package dto

type CategoryOutput struct {
	ID             int
	Name           string
	Description    string
	DepartmentID   int
	DepartmentName string
}

// Directory is the category snapshot of one form session.
type Directory struct {
	categories []CategoryOutput
	index      map[int]int
}

func NewDirectory(categories []CategoryOutput) Directory {
	index := make(map[int]int, len(categories))
	for i, c := range categories {
		index[c.ID] = i
	}
	return Directory{categories: categories, index: index}
}

func (d Directory) Find(id int) (CategoryOutput, bool) {
	i, ok := d.index[id]
	if !ok {
		return CategoryOutput{}, false
	}
	return d.categories[i], true
}

func (d Directory) List() []CategoryOutput {
	return append([]CategoryOutput(nil), d.categories...)
}

func (d Directory) Len() int {
	return len(d.categories)
}
