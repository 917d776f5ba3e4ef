package position

type Position struct {
	ID          int64
	Title       string
	Description *string
}
