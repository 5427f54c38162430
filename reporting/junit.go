package reporting

import (
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
)

// junitClassPrefix namespaces test cases under the MCP tool they exercise.
const junitClassPrefix = "mcp.tools."

type junitProperty struct {
	XMLName xml.Name `xml:"property"`
	Name    string   `xml:"name,attr"`
	Value   string   `xml:"value,attr"`
}

type junitFailure struct {
	XMLName xml.Name `xml:"failure"`
	Message string   `xml:"message,attr"`
	Body    string   `xml:",chardata"`
}

type junitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Time      string        `xml:"time,attr"`
	Failure   *junitFailure `xml:"failure,omitempty"`
}

type junitTestSuite struct {
	XMLName    xml.Name        `xml:"testsuite"`
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Errors     int             `xml:"errors,attr"`
	Time       string          `xml:"time,attr"`
	Timestamp  string          `xml:"timestamp,attr"`
	Properties []junitProperty `xml:"properties>property"`
	TestCases  []junitTestCase `xml:"testcase"`
}

// WriteJUnit serializes the report as JUnit-style XML: one suite element, one
// case per outcome in execution order, failure elements carrying the message
// and captured error text.
func (r *Report) WriteJUnit(w io.Writer) error {
	suite := junitTestSuite{
		Name:      "MCP Acceptance Tests",
		Tests:     r.Summary.Total,
		Failures:  r.Summary.Failed,
		Errors:    0,
		Time:      fmt.Sprintf("%.3f", r.Summary.DurationMs/1000.0),
		Timestamp: r.Timestamp.Format(time.RFC3339),
		Properties: []junitProperty{
			{Name: "transport", Value: r.Transport},
		},
	}
	if r.URL != "" {
		suite.Properties = append(suite.Properties, junitProperty{Name: "url", Value: r.URL})
	}

	for _, t := range r.Tests {
		tc := junitTestCase{
			Name:      t.PluginName,
			ClassName: junitClassPrefix + t.ToolName,
			Time:      fmt.Sprintf("%.3f", t.DurationMs/1000.0),
		}
		if !t.Passed {
			tc.Failure = &junitFailure{
				Message: t.Message,
				Body:    t.Error,
			}
		}
		suite.TestCases = append(suite.TestCases, tc)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return errors.Wrap(err, "writing xml header")
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(suite); err != nil {
		return errors.Wrap(err, "encoding junit report")
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return errors.Wrap(err, "writing trailing newline")
	}
	return nil
}
