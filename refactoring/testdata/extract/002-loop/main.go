package main

func sum(xs []int) int {
	s := 0
	for _, x := range xs {
		if x < 0 {
			break
		}
		s += x
	}
	return s
}

func main() {
	println(sum([]int{1, 2}))
}

func running(xs []int) {
	s := 0
	for _, x := range xs {
		println(s)
		s = s + x
	}
}

//<<<<<extract,6,3,8,4,fail,UnresolvedBranch
//<<<<<extract,5,2,10,3,pass,ACCESS_TO_LOCAL
//<<<<<extract,5,2,11,10,pass,RETURN_STATEMENT_VALUE
//<<<<<extract,22,3,22,12,pass,ACCESS_TO_LOCAL
