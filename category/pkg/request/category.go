package request

type CreateCategory struct {
	Name        string `validate:"required,min=2,max=100" json:"name"`
	Description string `validate:"max=500"                json:"description"`
}

type UpdateCategory struct {
	Name        string `validate:"required,min=2,max=100" json:"name"`
	Description string `validate:"max=500"                json:"description"`
}
