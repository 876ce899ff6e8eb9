package ast

// Visitor provides an interface for traversing a script.
// Implement this interface to perform checks or analysis on blocks and expressions.
type Visitor interface {
	VisitBlock(*Block) error
	VisitLine(*Line) error
	VisitExpr(*Expr) error
}

// Walk traverses the script depth-first in source order and calls the visitor
// for each node. It returns the first error encountered, or nil if traversal completes.
func Walk(script *Script, visitor Visitor) error {
	for _, module := range script.Modules {
		if err := walkBlock(module, visitor); err != nil {
			return err
		}
	}
	return nil
}

// walkBlock recursively walks a block and its children.
func walkBlock(block *Block, visitor Visitor) error {
	if err := visitor.VisitBlock(block); err != nil {
		return err
	}

	for _, child := range block.Children {
		if err := walkBlock(child, visitor); err != nil {
			return err
		}
	}

	for _, line := range block.Lines {
		if err := visitor.VisitLine(line); err != nil {
			return err
		}
		if line.Expr != nil {
			if err := WalkExpr(line.Expr, visitor); err != nil {
				return err
			}
		}
	}

	return nil
}

// WalkExpr recursively walks an expression tree, parents before children.
func WalkExpr(expr *Expr, visitor Visitor) error {
	if err := visitor.VisitExpr(expr); err != nil {
		return err
	}

	if expr.Left != nil {
		if err := WalkExpr(expr.Left, visitor); err != nil {
			return err
		}
	}
	if expr.Right != nil {
		if err := WalkExpr(expr.Right, visitor); err != nil {
			return err
		}
	}
	for _, arg := range expr.Args {
		if err := WalkExpr(arg, visitor); err != nil {
			return err
		}
	}

	return nil
}
