/*
 * Copyright 2025 The Featran Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package featran

import (
	"github.com/hirofumi/featran/collection"
	"github.com/hirofumi/featran/logger"
)

// Option configures extractor construction.
type Option func(*config)

type config struct {
	parallelism int
}

func newConfig(opts ...Option) *config {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func (c *config) localOptions() []collection.LocalOption {
	if c.parallelism > 0 {
		return []collection.LocalOption{collection.WithParallelism(c.parallelism)}
	}
	return nil
}

// WithParallelism bounds the worker pool of the local collection
// backend built by New and NewWithSettings. The default is GOMAXPROCS.
func WithParallelism(n int) Option {
	return func(c *config) {
		c.parallelism = n
	}
}

// WithLogLevel sets the level of the default logger.
func WithLogLevel(level logger.Level) Option {
	return func(*config) {
		logger.Default().SetLevel(level)
	}
}

// WithDiscardLog disables all log output.
func WithDiscardLog() Option {
	return func(*config) {
		logger.SetDefault(logger.NewDiscard())
	}
}
