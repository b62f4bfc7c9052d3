package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"masterpiece/internal/domain"
)

type dataURLRequest struct {
	DataURL string `json:"data_url"`
}

// ImagePut accepts a multipart "image" field or a JSON data URL.
func (a *App) ImagePut(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.MaxUploadBytes+(1<<20))

	img, err := a.readImage(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.error(w, http.StatusRequestEntityTooLarge, "too_large", "image exceeds upload limit")
			return
		}
		a.fail(w, r, err)
		return
	}
	if int64(len(img.Data)) > a.MaxUploadBytes {
		a.error(w, http.StatusRequestEntityTooLarge, "too_large", "image exceeds upload limit")
		return
	}
	info, err := a.Studio.SelectImage(img)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, info)
}

func (a *App) ImageDelete(w http.ResponseWriter, r *http.Request) {
	a.Studio.Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) readImage(r *http.Request) (domain.Image, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch {
	case mediaType == "multipart/form-data":
		file, header, err := r.FormFile("image")
		if err != nil {
			return domain.Image{}, invalid(domain.MsgNoImage, err)
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return domain.Image{}, err
		}
		mimeType := header.Header.Get("Content-Type")
		if mimeType == "" || mimeType == "application/octet-stream" {
			mimeType = http.DetectContentType(data)
		}
		return domain.Image{Data: data, MIMEType: strings.TrimSpace(strings.Split(mimeType, ";")[0])}, nil
	case mediaType == "application/json":
		var req dataURLRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return domain.Image{}, invalid("invalid payload", err)
		}
		return domain.ParseDataURL(req.DataURL)
	default:
		return domain.Image{}, invalid("unsupported content type", nil)
	}
}

func invalid(message string, err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	return domain.NewError(domain.KindUnclassified, message, errors.Join(domain.ErrInvalidRequest, err))
}
