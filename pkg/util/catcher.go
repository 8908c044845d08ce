package util

import (
	"fmt"

	"github.com/pkg/errors"
)

type TryCatchBlock struct {
	Try     func()
	Catch   func(error)
	Finally func()
}

func (tcf TryCatchBlock) Do() {
	if tcf.Finally != nil {
		defer tcf.Finally()
	}
	if tcf.Catch != nil {
		defer func() {
			if r := recover(); r != nil {
				err, ok := r.(error)
				if !ok {
					err = fmt.Errorf("%v", r)
				}
				tcf.Catch(err)
			}
		}()
	}
	tcf.Try()
}

// CatchErrs runs fn and converts a panic raised inside it into an error
func CatchErrs(fn func() error) error {
	var err error
	TryCatchBlock{
		Try: func() {
			err = fn()
		},
		Catch: func(e error) {
			err = errors.Wrap(e, "recovered panic")
		},
	}.Do()
	return err
}
