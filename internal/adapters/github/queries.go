package github

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/evanschultz/minik/internal/app"
	"github.com/evanschultz/minik/internal/domain"
)

// statusFieldName is the single-select field rendered as board columns.
const statusFieldName = "Status"

const viewerQuery = `query { viewer { login } }`

const projectRefFields = `nodes { id title number url }`

const orgProjectsQuery = `
query($org: String!) {
  organization(login: $org) {
    projectsV2(first: 100) { ` + projectRefFields + ` }
  }
}`

const viewerProjectsQuery = `
query {
  viewer {
    login
    projectsV2(first: 100) { ` + projectRefFields + ` }
  }
}`

const contentFields = `
  title
  url
  body
  assignees(first: 10) { nodes { login } }
  labels(first: 10) { nodes { name } }`

const projectQuery = `
query($projectId: ID!, $cursor: String) {
  node(id: $projectId) {
    ... on ProjectV2 {
      id
      title
      number
      url
      views(first: 1) {
        nodes {
          fields(first: 20) {
            nodes {
              ... on ProjectV2SingleSelectField { id name options { id name } }
            }
          }
        }
      }
      items(first: 100, after: $cursor) {
        pageInfo { hasNextPage endCursor }
        nodes {
          id
          content {
            ... on Issue {` + contentFields + `
            }
            ... on PullRequest {` + contentFields + `
            }
          }
          fieldValues(first: 20) {
            nodes {
              ... on ProjectV2ItemFieldSingleSelectValue {
                optionId
                field { ... on ProjectV2SingleSelectField { id } }
              }
            }
          }
        }
      }
    }
  }
}`

const updateItemMutation = `
mutation($projectId: ID!, $itemId: ID!, $fieldId: ID!, $value: ProjectV2FieldValue!) {
  updateProjectV2ItemFieldValue(input: {
    projectId: $projectId
    itemId: $itemId
    fieldId: $fieldId
    value: $value
  }) {
    projectV2Item { id }
  }
}`

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage    `json:"data"`
	Errors []graphQLErrorItem `json:"errors"`
}

type graphQLErrorItem struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type restOrganization struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Name  string `json:"name"`
}

type viewerResponse struct {
	Viewer struct {
		Login string `json:"login"`
	} `json:"viewer"`
}

type projectRefConnection struct {
	Nodes []struct {
		ID     string `json:"id"`
		Title  string `json:"title"`
		Number int    `json:"number"`
		URL    string `json:"url"`
	} `json:"nodes"`
}

// refs converts connection nodes, dropping nulls the API returns for inaccessible projects.
func (c projectRefConnection) refs(owner string) []domain.ProjectRef {
	out := make([]domain.ProjectRef, 0, len(c.Nodes))
	for _, node := range c.Nodes {
		if node.ID == "" {
			continue
		}
		out = append(out, domain.ProjectRef{
			ID:     node.ID,
			Title:  node.Title,
			Number: node.Number,
			URL:    node.URL,
			Owner:  owner,
		})
	}
	return out
}

type orgProjectsResponse struct {
	Organization *struct {
		ProjectsV2 projectRefConnection `json:"projectsV2"`
	} `json:"organization"`
}

type viewerProjectsResponse struct {
	Viewer struct {
		Login      string               `json:"login"`
		ProjectsV2 projectRefConnection `json:"projectsV2"`
	} `json:"viewer"`
}

type projectResponse struct {
	Node *projectNode `json:"node"`
}

type projectNode struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Number int    `json:"number"`
	URL    string `json:"url"`
	Views  struct {
		Nodes []struct {
			Fields struct {
				Nodes []singleSelectField `json:"nodes"`
			} `json:"fields"`
		} `json:"nodes"`
	} `json:"views"`
	Items struct {
		PageInfo struct {
			HasNextPage bool   `json:"hasNextPage"`
			EndCursor   string `json:"endCursor"`
		} `json:"pageInfo"`
		Nodes []itemNode `json:"nodes"`
	} `json:"items"`
}

type singleSelectField struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Options []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"options"`
}

type itemNode struct {
	ID          string       `json:"id"`
	Content     *itemContent `json:"content"`
	FieldValues struct {
		Nodes []struct {
			OptionID string `json:"optionId"`
			Field    struct {
				ID string `json:"id"`
			} `json:"field"`
		} `json:"nodes"`
	} `json:"fieldValues"`
}

type itemContent struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Body      string `json:"body"`
	Assignees struct {
		Nodes []struct {
			Login string `json:"login"`
		} `json:"nodes"`
	} `json:"assignees"`
	Labels struct {
		Nodes []struct {
			Name string `json:"name"`
		} `json:"nodes"`
	} `json:"labels"`
}

type updateItemResponse struct {
	UpdateProjectV2ItemFieldValue struct {
		ProjectV2Item struct {
			ID string `json:"id"`
		} `json:"projectV2Item"`
	} `json:"updateProjectV2ItemFieldValue"`
}

// statusField returns the Status single-select field from the first view.
func (n *projectNode) statusField() (singleSelectField, bool) {
	if len(n.Views.Nodes) == 0 {
		return singleSelectField{}, false
	}
	for _, field := range n.Views.Nodes[0].Fields.Nodes {
		if field.ID != "" && field.Name == statusFieldName {
			return field, true
		}
	}
	return singleSelectField{}, false
}

// snapshot converts the project node and its collected items.
func (n *projectNode) snapshot(items []itemNode) (domain.Snapshot, error) {
	project, err := domain.NewProject(n.ID, n.Title, n.Number, n.URL)
	if err != nil {
		return domain.Snapshot{}, err
	}
	field, ok := n.statusField()
	if !ok {
		return domain.Snapshot{}, fmt.Errorf("project %s: %w", n.ID, app.ErrStatusFieldMissing)
	}

	columns := make([]domain.Column, 0, len(field.Options))
	for position, option := range field.Options {
		column, err := domain.NewColumn(option.ID, option.Name, position)
		if err != nil {
			return domain.Snapshot{}, fmt.Errorf("status option %d: %w", position, err)
		}
		columns = append(columns, column)
	}

	counts := map[string]int{}
	out := make([]domain.Item, 0, len(items))
	for _, node := range items {
		if node.Content == nil {
			continue
		}
		columnID := node.statusOption(field.ID)
		assignees := make([]string, 0, len(node.Content.Assignees.Nodes))
		for _, a := range node.Content.Assignees.Nodes {
			assignees = append(assignees, a.Login)
		}
		labels := make([]string, 0, len(node.Content.Labels.Nodes))
		for _, l := range node.Content.Labels.Nodes {
			labels = append(labels, l.Name)
		}
		item, err := domain.NewItem(node.ID, node.Content.Title, node.Content.URL, columnID, assignees, labels)
		if err != nil {
			continue
		}
		item.Body = strings.TrimSpace(node.Content.Body)
		if columnID != "" {
			counts[columnID]++
		}
		out = append(out, item)
	}
	for i := range columns {
		columns[i].ItemCount = counts[columns[i].ID]
	}

	return domain.Snapshot{
		Project:       project,
		Columns:       columns,
		Items:         out,
		StatusFieldID: field.ID,
	}, nil
}

// statusOption returns the option id set on the Status field, if any.
func (n itemNode) statusOption(fieldID string) string {
	for _, value := range n.FieldValues.Nodes {
		if value.OptionID == "" {
			continue
		}
		if value.Field.ID == "" || value.Field.ID == fieldID {
			return value.OptionID
		}
	}
	return ""
}
