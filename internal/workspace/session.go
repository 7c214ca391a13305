package workspace

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"

	"adreport/internal/models"
)

// ErrNoSession is returned when the session middleware is not installed.
var ErrNoSession = errors.New("no session available")

// Load returns the session's dataset, or an empty one if nothing was uploaded.
// A corrupt stored value is dropped and reported as an empty dataset.
func Load(c fiber.Ctx) (*models.Dataset, error) {
	sess := session.FromContext(c)
	if sess == nil {
		return nil, ErrNoSession
	}
	ds, err := FromSession(sess.Get(SessionKey))
	if errors.Is(err, ErrCorrupt) {
		sess.Delete(SessionKey)
		return models.NewDataset(), nil
	}
	if err != nil {
		return nil, err
	}
	if ds == nil {
		ds = models.NewDataset()
	}
	return ds, nil
}

// Save stores the dataset in the session.
func Save(c fiber.Ctx, ds *models.Dataset) error {
	sess := session.FromContext(c)
	if sess == nil {
		return ErrNoSession
	}
	data, err := Encode(ds)
	if err != nil {
		return err
	}
	sess.Set(SessionKey, data)
	return nil
}

// Clear removes the dataset from the session.
func Clear(c fiber.Ctx) {
	if sess := session.FromContext(c); sess != nil {
		sess.Delete(SessionKey)
	}
}
