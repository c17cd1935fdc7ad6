// Copyright © 2024 The ELPS authors

package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A php-parser v4 dump of:
//
//	namespace Acme;
//	use Acme\Model\Post as P;
//	/** @param int $id */
//	do_action("save_{$post->post_type}", $id);
//	$x = (string) apply_filters('x', 1.5, true);
const v4Dump = `====> File test.php:
==> JSON dump:
[
  {
    "nodeType": "Stmt_Namespace",
    "name": {"nodeType": "Name", "parts": ["Acme"], "attributes": {"startLine": 1}},
    "stmts": [
      {
        "nodeType": "Stmt_Use",
        "type": 1,
        "uses": [
          {
            "nodeType": "Stmt_UseUse",
            "type": 0,
            "name": {"nodeType": "Name", "parts": ["Acme", "Model", "Post"]},
            "alias": {"nodeType": "Identifier", "name": "P"}
          }
        ],
        "attributes": {"startLine": 2}
      },
      {
        "nodeType": "Stmt_Expression",
        "expr": {
          "nodeType": "Expr_FuncCall",
          "name": {"nodeType": "Name", "parts": ["do_action"]},
          "args": [
            {
              "nodeType": "Arg",
              "name": null,
              "value": {
                "nodeType": "Scalar_Encapsed",
                "parts": [
                  {"nodeType": "Scalar_EncapsedStringPart", "value": "save_", "attributes": {"startLine": 4}},
                  {
                    "nodeType": "Expr_PropertyFetch",
                    "var": {"nodeType": "Expr_Variable", "name": "post", "attributes": {"startLine": 4}},
                    "name": {"nodeType": "Identifier", "name": "post_type"},
                    "attributes": {"startLine": 4}
                  }
                ],
                "attributes": {"startLine": 4}
              },
              "byRef": false,
              "unpack": false
            },
            {
              "nodeType": "Arg",
              "name": null,
              "value": {"nodeType": "Expr_Variable", "name": "id", "attributes": {"startLine": 4}},
              "byRef": false,
              "unpack": false
            }
          ],
          "attributes": {"startLine": 4}
        },
        "attributes": {
          "startLine": 4,
          "comments": [
            {"nodeType": "Comment_Doc", "text": "/** @param int $id */", "line": 3}
          ]
        }
      },
      {
        "nodeType": "Stmt_Expression",
        "expr": {
          "nodeType": "Expr_Assign",
          "var": {"nodeType": "Expr_Variable", "name": "x", "attributes": {"startLine": 5}},
          "expr": {
            "nodeType": "Expr_Cast_String",
            "expr": {
              "nodeType": "Expr_FuncCall",
              "name": {"nodeType": "Name_FullyQualified", "parts": ["apply_filters"]},
              "args": [
                {"nodeType": "Arg", "name": null, "value": {"nodeType": "Scalar_String", "value": "x"}, "unpack": false},
                {"nodeType": "Arg", "name": null, "value": {"nodeType": "Scalar_DNumber", "value": 1.5}, "unpack": false},
                {"nodeType": "Arg", "name": null, "value": {"nodeType": "Expr_ConstFetch", "name": {"nodeType": "Name", "parts": ["true"]}}, "unpack": false}
              ],
              "attributes": {"startLine": 5}
            },
            "attributes": {"startLine": 5}
          },
          "attributes": {"startLine": 5}
        },
        "attributes": {"startLine": 5}
      }
    ],
    "attributes": {"startLine": 1}
  }
]`

func TestDecodeJSON_V4(t *testing.T) {
	f, err := DecodeJSON("test.php.json", []byte(v4Dump))
	require.NoError(t, err)
	assert.Equal(t, "test.php.json", f.Path)
	require.Len(t, f.Nodes, 1)

	ns := f.Nodes[0]
	assert.Equal(t, Namespace, ns.Kind)
	assert.Equal(t, "Acme", ns.Name)
	require.Len(t, ns.Stmts, 3)

	use := ns.Stmts[0]
	assert.Equal(t, Use, use.Kind)
	assert.Equal(t, []UseItem{{Name: `Acme\Model\Post`, Alias: "P"}}, use.Uses)

	call := ns.Stmts[1]
	assert.Equal(t, Call, call.Kind)
	assert.Equal(t, "do_action", call.Name)
	assert.Equal(t, 4, call.Line)
	assert.Equal(t, "/** @param int $id */", call.Doc)
	require.Len(t, call.Args, 2)
	name := call.Args[0].Value
	assert.Equal(t, Interpolated, name.Kind)
	require.Len(t, name.Parts, 2)
	assert.Equal(t, StringPart, name.Parts[0].Kind)
	assert.Equal(t, "save_", name.Parts[0].Value)
	assert.Equal(t, PropertyFetch, name.Parts[1].Kind)
	assert.Equal(t, "post_type", name.Parts[1].Name)
	assert.Equal(t, "post", name.Parts[1].Var.Name)

	assign := ns.Stmts[2]
	assert.Equal(t, Assign, assign.Kind)
	assert.Equal(t, Variable, assign.Var.Kind)
	cast := assign.Expr
	assert.Equal(t, Cast, cast.Kind)
	assert.Equal(t, "string", cast.CastTo)
	filter := cast.Expr
	assert.Equal(t, "apply_filters", filter.Name)
	require.Len(t, filter.Args, 3)
	assert.Equal(t, Float, filter.Args[1].Value.Kind)
	assert.Equal(t, "1.5", filter.Args[1].Value.Value)
	assert.Equal(t, ConstFetch, filter.Args[2].Value.Kind)
	assert.Equal(t, "true", filter.Args[2].Value.Name)
}

func TestDecodeJSON_V5Names(t *testing.T) {
	dump := `[
	  {
	    "nodeType": "Stmt_Expression",
	    "expr": {
	      "nodeType": "Expr_FuncCall",
	      "name": {"nodeType": "Name", "name": "add_filter"},
	      "args": [
	        {"nodeType": "Arg", "name": null, "value": {"nodeType": "Scalar_String", "value": "the_title"}},
	        {
	          "nodeType": "Arg",
	          "name": null,
	          "value": {
	            "nodeType": "Expr_ArrowFunction",
	            "params": [
	              {"nodeType": "Param", "type": {"nodeType": "Identifier", "name": "string"}, "variadic": false,
	               "var": {"nodeType": "Expr_Variable", "name": "title"}, "default": null},
	              {"nodeType": "Param", "type": {"nodeType": "NullableType", "type": {"nodeType": "Identifier", "name": "int"}},
	               "variadic": false, "var": {"nodeType": "Expr_Variable", "name": "id"},
	               "default": {"nodeType": "Scalar_Int", "value": 0}}
	            ],
	            "returnType": {"nodeType": "Identifier", "name": "string"},
	            "expr": {"nodeType": "Expr_Variable", "name": "title"}
	          }
	        },
	        {"nodeType": "Arg", "name": {"nodeType": "Identifier", "name": "accepted_args"},
	         "value": {"nodeType": "Scalar_Int", "value": 2}}
	      ],
	      "attributes": {"startLine": 3}
	    }
	  }
	]`
	f, err := DecodeJSON("v5.json", []byte(dump))
	require.NoError(t, err)
	require.Len(t, f.Nodes, 1)
	call := f.Nodes[0]
	assert.Equal(t, "add_filter", call.Name)
	require.Len(t, call.Args, 3)

	fn := call.Args[1].Value
	assert.Equal(t, ArrowFunction, fn.Kind)
	assert.Equal(t, "string", fn.ReturnType)
	assert.Equal(t, []Param{
		{Name: "title", Type: "string"},
		{Name: "id", Type: "?int", Optional: true},
	}, fn.Params)

	assert.Equal(t, "accepted_args", call.Args[2].Name)
	assert.Equal(t, Int, call.Args[2].Value.Kind)
	assert.Equal(t, "2", call.Args[2].Value.Value)
}

func TestDecodeJSON_UnknownNodesKeepChildren(t *testing.T) {
	dump := `[
	  {
	    "nodeType": "Stmt_If",
	    "cond": {"nodeType": "Expr_Variable", "name": "ok"},
	    "stmts": [
	      {"nodeType": "Stmt_Expression", "expr": {"nodeType": "Expr_FuncCall",
	        "name": {"nodeType": "Name", "parts": ["do_action"]}, "args": []}}
	    ],
	    "else": null,
	    "attributes": {"startLine": 1}
	  }
	]`
	f, err := DecodeJSON("if.json", []byte(dump))
	require.NoError(t, err)
	require.Len(t, f.Nodes, 1)
	n := f.Nodes[0]
	assert.Equal(t, Other, n.Kind)
	assert.Equal(t, "Stmt_If", n.Type)
	require.Len(t, n.Children, 2)
	assert.Equal(t, Variable, n.Children[0].Kind)
	assert.Equal(t, Call, n.Children[1].Kind)
	assert.Equal(t, []*Node{n.Children[0], n.Children[1]}, ChildNodes(n))
}

func TestDecodeJSON_Errors(t *testing.T) {
	_, err := DecodeJSON("bad.json", []byte(`[{"nodeType": `))
	assert.Error(t, err)
	_, err = DecodeJSON("obj.json", []byte(`{"nodeType": "Stmt_Echo"}`))
	assert.Error(t, err)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "call", Call.String())
	assert.Equal(t, "array-dim-fetch", ArrayDimFetch.String())
	assert.Equal(t, "other", Other.String())
}
