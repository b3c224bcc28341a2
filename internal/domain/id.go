/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import "go.jetify.com/typeid/v2"

// ShapeIDPrefix is the type prefix of generated shape ids.
const ShapeIDPrefix = "shape"

// NewShapeID returns a fresh sortable shape id such as shape_01h455vb4pex5vsknk084sn02q.
func NewShapeID() string {
	id := typeid.MustGenerate(ShapeIDPrefix)
	return id.String()
}

// IsGeneratedID reports whether id was produced by NewShapeID. Imported documents may carry other ids.
func IsGeneratedID(id string) bool {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return false
	}
	return parsed.Prefix() == ShapeIDPrefix
}
