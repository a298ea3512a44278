// Copyright (c) 2026 Soliton Technologies
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pipeline

import (
	"context"

	"github.com/solitontech/Soliton-Leaves-Bot/internal/graph"
	"github.com/solitontech/Soliton-Leaves-Bot/internal/greythr"
)

// ConnectGraph adapts a graph.Connector to MailConnectFunc.
func ConnectGraph(c *graph.Connector) MailConnectFunc {
	return func(ctx context.Context) (Mail, error) {
		client, err := c.Connect(ctx)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

// ConnectGreytHR adapts a greythr.Connector to HRConnectFunc.
func ConnectGreytHR(c *greythr.Connector) HRConnectFunc {
	return func(ctx context.Context) (HR, error) {
		client, err := c.Connect(ctx)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}
