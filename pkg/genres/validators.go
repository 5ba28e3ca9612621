package genres

type GenrePayload struct {
	Name string `form:"name" json:"name" mod:"trim" validate:"required,max=100" sanitize:"escape"`
}
