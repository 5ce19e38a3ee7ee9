// Package io provides stream helpers for reading shell output.
package io

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// CollectLines reads r to exhaustion and returns its lines, each followed by
// a single "\n". "\n", "\r\n" and a lone "\r" all end a line. A final line
// without a terminator still gets one, so the result of an empty stream is "".
func CollectLines(r io.Reader) (string, error) {
	var sb strings.Builder
	br := bufio.NewReader(r)

	for {
		line, err := br.ReadString('\n')
		if line != "" {
			line = strings.TrimSuffix(line, "\n")
			line = strings.TrimSuffix(line, "\r")
			for _, part := range strings.Split(line, "\r") {
				sb.WriteString(part)
				sb.WriteByte('\n')
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return sb.String(), nil
			}
			return sb.String(), err
		}
	}
}
