// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package bptree

import (
	"github.com/cockroachdb/errors"
)

// ErrKeyNotFound is returned by Map.At for a key with no entry. Every
// other lookup signals absence with a false ok or a zero count instead.
var ErrKeyNotFound = errors.New("bptree: key not found")
