package spotify

import "encoding/json"

// Image is cover art or profile art at one resolution. Width and Height are
// -1 when the API did not report dimensions.
type Image struct {
	URL    string
	Width  int
	Height int
}

// UnmarshalJSON decodes an image object, defaulting absent or null
// dimensions to -1.
func (i *Image) UnmarshalJSON(data []byte) error {
	aux := struct {
		URL    string `json:"url"`
		Width  *int   `json:"width"`
		Height *int   `json:"height"`
	}{}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	i.URL = aux.URL
	i.Width, i.Height = -1, -1
	if aux.Width != nil {
		i.Width = *aux.Width
	}
	if aux.Height != nil {
		i.Height = *aux.Height
	}
	return nil
}
