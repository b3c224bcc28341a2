/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package storage persists boards. A board document is a JSON file holding
// either the collapsed scene or the raw revision log; it is validated
// against an embedded JSON schema on import. Files are written through a
// temp file and rename with a timestamped backup of the previous version.
// A board can also be packed into a single SQLite archive.
package storage
