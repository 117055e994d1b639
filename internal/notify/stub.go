//go:build !linux

package notify

import "errors"

func newBackend() (backend, error) {
	return nil, errors.New("notify: desktop notifications need a linux session bus")
}
