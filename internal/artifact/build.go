package artifact

import (
	"fmt"

	"github.com/leapstack-labs/incomecast/pkg/model"
)

// Build turns a document into a ready classifier.
func Build(doc *Document) (model.Classifier, error) {
	var (
		clf model.Classifier
		err error
	)

	switch doc.Kind {
	case KindLogisticRegression, "logistic", "":
		if doc.Logistic == nil {
			return nil, fmt.Errorf("artifact kind %q has no logistic parameters", KindLogisticRegression)
		}
		clf, err = model.NewLogisticRegression(doc.Logistic.Coef, doc.Logistic.Intercept, doc.Threshold)

	case KindDecisionTree:
		if len(doc.Trees) != 1 {
			return nil, fmt.Errorf("artifact kind %q needs exactly one tree, got %d", KindDecisionTree, len(doc.Trees))
		}
		var tree *model.DecisionTree
		tree, err = buildTree(doc, doc.Trees[0])
		if err == nil {
			err = tree.Validate()
		}
		clf = tree

	case KindRandomForest:
		trees := make([]*model.DecisionTree, len(doc.Trees))
		for i, td := range doc.Trees {
			if trees[i], err = buildTree(doc, td); err != nil {
				return nil, fmt.Errorf("tree %d: %w", i, err)
			}
		}
		clf, err = model.NewRandomForest(trees)

	default:
		return nil, fmt.Errorf("unknown artifact kind %q", doc.Kind)
	}
	if err != nil {
		return nil, err
	}

	if doc.Scaler == nil {
		return clf, nil
	}
	scaler, err := model.NewStandardScaler(doc.Scaler.Mean, doc.Scaler.Scale)
	if err != nil {
		return nil, err
	}
	return model.NewPipeline(clf, scaler)
}

func buildTree(doc *Document, td TreeDoc) (*model.DecisionTree, error) {
	classes := doc.Classes
	if len(classes) == 0 {
		classes = []int{0, 1}
	}
	width := len(doc.FeatureNames)
	if width == 0 {
		width = len(doc.Columns)
	}
	if width == 0 {
		return nil, fmt.Errorf("tree models need feature_names or columns to know their width")
	}
	return &model.DecisionTree{
		ChildrenLeft:  td.ChildrenLeft,
		ChildrenRight: td.ChildrenRight,
		Feature:       td.Feature,
		Threshold:     td.Threshold,
		Value:         td.Value,
		ClassLabels:   classes,
		Features:      width,
	}, nil
}
