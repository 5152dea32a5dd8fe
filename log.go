// Copyright 2018 Andrew Bates
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package insteon

import "github.com/golang/glog"

// Logger adds Trace/Debug verbosity levels on top of glog's native
// Info/Warning/Error levels. The PLM core is chatty at the wire-trace
// level (every byte buffer, every frame) so those are gated behind
// glog.V rather than always printed at Info.
type Logger struct{}

// Log is the package-wide logger used by plm and insteon. There is no
// process-global state beyond what glog itself already keeps.
var Log = Logger{}

func (Logger) Tracef(format string, args ...interface{}) {
	if glog.V(2) {
		glog.Infof(format, args...)
	}
}

func (Logger) Debugf(format string, args ...interface{}) {
	if glog.V(1) {
		glog.Infof(format, args...)
	}
}

func (Logger) Infof(format string, args ...interface{}) {
	glog.Infof(format, args...)
}

func (Logger) Warningf(format string, args ...interface{}) {
	glog.Warningf(format, args...)
}
