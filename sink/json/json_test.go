package json_test

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sgf "github.com/reoring/sgfdata"
	"github.com/reoring/sgfdata/metadata"
	sinkjson "github.com/reoring/sgfdata/sink/json"
)

func sample() *sgf.Dataset {
	s := sgf.NewSection()
	s.SetHeader(sgf.KeyInvestigationPoint, sgf.Text("PT1"))
	s.SetHeader("date", sgf.Date(time.Date(2012, 1, 5, 0, 0, 0, 0, time.UTC)))
	s.Data = sgf.NewBlock(metadata.Data,
		sgf.NewRecord(sgf.P(sgf.KeyDepth, sgf.Float(0.5)), sgf.P("K", sgf.Integer(90))),
		sgf.NewRecord(sgf.P(sgf.KeyDepth, sgf.Float(math.NaN()))),
	)
	return &sgf.Dataset{Sections: []*sgf.Section{s}}
}

func TestMarshal(t *testing.T) {
	b, err := sinkjson.Marshal(sample())
	require.NoError(t, err)
	assert.JSONEq(t, `{"sections":[{
		"main":[{"investigation_point":"PT1","date":"2012-01-05"}],
		"data":[{"depth":0.5,"K":90},{"depth":null}]
	}]}`, string(b))
}

func TestWrite_Tables(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sinkjson.Write(&buf, sample(), sinkjson.Options{Tables: true, Indent: "  "}))
	assert.JSONEq(t, `{
		"main":{"columns":[{"name":"investigation_point","type":"text"},{"name":"date","type":"date"}],
		        "rows":[["PT1","2012-01-05"]]},
		"method":{"columns":[{"name":"investigation_point","type":"text"}],"rows":[]},
		"data":{"columns":[{"name":"investigation_point","type":"text"},{"name":"depth","type":"float"},{"name":"K","type":"integer"}],
		        "rows":[["PT1",0.5,90],["PT1",null,""]]}
	}`, buf.String())
	assert.Contains(t, buf.String(), "\n  ")
}
