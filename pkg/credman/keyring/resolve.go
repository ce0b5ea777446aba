package keyring

import (
	"errors"

	"github.com/hashicorp/go-multierror"
)

// Resolve returns the stored token, looking in each store in order. When no
// store holds one and create is set, a token is generated in the first store
// that accepts it.
func Resolve(create bool, stores ...TokenStore) (string, error) {
	var result *multierror.Error
	for _, s := range stores {
		token, err := s.GetToken()
		if err == nil {
			return token, nil
		}
		if !errors.Is(err, ErrNotFound) {
			result = multierror.Append(result, err)
		}
	}
	if !create {
		if err := result.ErrorOrNil(); err != nil {
			return "", err
		}
		return "", ErrNotFound
	}
	for _, s := range stores {
		token, err := s.SetToken()
		if err == nil {
			return token, nil
		}
		result = multierror.Append(result, err)
	}
	if err := result.ErrorOrNil(); err != nil {
		return "", err
	}
	return "", ErrNotFound
}
