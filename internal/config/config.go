/*
 * cortexa9sim - optional configuration file overrides.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package config reads an optional TOML/YAML/JSON override file for the
// boot image paths and GDB port, via github.com/spf13/viper. Absence of
// -config is not an error: every field keeps its CLI/flag default.
package config

import "github.com/spf13/viper"

// Overrides is the subset of settings a config file may override.
type Overrides struct {
	VectorsPath string
	OSImagePath string
	GDBPort     int
	MetricsAddr string
}

// Load reads path (any format viper can sniff from its extension) and
// returns the overrides present in it; zero-value fields mean "not set in
// the file, keep the flag/default".
func Load(path string) (Overrides, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Overrides{}, err
	}

	return Overrides{
		VectorsPath: v.GetString("vectors"),
		OSImagePath: v.GetString("os_image"),
		GDBPort:     v.GetInt("gdb_port"),
		MetricsAddr: v.GetString("metrics_addr"),
	}, nil
}

// Apply overlays any non-zero fields of o onto the given defaults.
func (o Overrides) Apply(vectorsPath, osImagePath string, gdbPort int, metricsAddr string) (string, string, int, string) {
	if o.VectorsPath != "" {
		vectorsPath = o.VectorsPath
	}
	if o.OSImagePath != "" {
		osImagePath = o.OSImagePath
	}
	if o.GDBPort != 0 {
		gdbPort = o.GDBPort
	}
	if o.MetricsAddr != "" {
		metricsAddr = o.MetricsAddr
	}
	return vectorsPath, osImagePath, gdbPort, metricsAddr
}
