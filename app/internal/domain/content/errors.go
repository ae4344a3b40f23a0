package content

import "errors"

var (
	ErrPageNotFound       = errors.New("page not found")
	ErrPageInvalidName    = errors.New("invalid page name")
	ErrPageInvalidContent = errors.New("page content must be a JSON object")
	ErrPageNameExists     = errors.New("page name already exists")
)
